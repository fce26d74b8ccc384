package app

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"community_growth_bot/internal/domain/growth"
	idb "community_growth_bot/internal/infra/database"
	"community_growth_bot/internal/predict"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/telebot.v3"
)

const editWait = 2 * time.Second

type fakeSettingsRepo struct {
	settings *growth.Settings
}

func (f *fakeSettingsRepo) Get(_ context.Context, _ int64) (*growth.Settings, error) {
	if f.settings == nil {
		return nil, idb.ErrSettingsNotFound
	}
	return f.settings, nil
}

func (f *fakeSettingsRepo) Upsert(_ context.Context, s *growth.Settings) error {
	f.settings = s
	return nil
}

func (f *fakeSettingsRepo) ListEnabled(_ context.Context) ([]*growth.Settings, error) {
	if f.settings != nil && f.settings.Enabled {
		return []*growth.Settings{f.settings}, nil
	}
	return nil, nil
}

// fakeClient records announcements and signals edits so tests can wait for
// the detached refinement goroutine.
type fakeClient struct {
	mu          sync.Mutex
	memberCount int
	texts       []string
	captions    []string
	edited      chan string
}

func newFakeClient(memberCount int) *fakeClient {
	return &fakeClient{
		memberCount: memberCount,
		edited:      make(chan string, 1),
	}
}

func (f *fakeClient) SendMessage(_ int64, text string, _ *telebot.SendOptions) (*telebot.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.texts = append(f.texts, text)
	return &telebot.Message{ID: len(f.texts), Text: text}, nil
}

func (f *fakeClient) SendPhoto(_ int64, _ []byte, caption string) (*telebot.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.captions = append(f.captions, caption)
	return &telebot.Message{ID: len(f.captions), Photo: &telebot.Photo{}, Caption: caption}, nil
}

func (f *fakeClient) EditText(_ *telebot.Message, text string) error {
	f.edited <- text
	return nil
}

func (f *fakeClient) EditCaption(_ *telebot.Message, caption string) error {
	f.edited <- caption
	return nil
}

func (f *fakeClient) MemberCount(_ int64) (int, error) {
	return f.memberCount, nil
}

func (f *fakeClient) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.texts) + len(f.captions)
}

type fakeMilestoneRenderer struct {
	calls int
}

func (f *fakeMilestoneRenderer) RenderMilestone(_ []time.Time) ([]byte, error) {
	f.calls++
	return []byte("png"), nil
}

func enabledSettings(chatID int64, increment int) *growth.Settings {
	return &growth.Settings{
		ChatID:       chatID,
		Enabled:      true,
		Increment:    increment,
		NotifyChatID: chatID,
	}
}

func newService(settings *growth.Settings, joinRepo *fakeJoinRepo, client *fakeClient, forecast *predict.Result) (*MilestoneService, *fakeMilestoneRenderer) {
	renderer := &fakeMilestoneRenderer{}
	chain := predict.NewChain(&stubPredictor{result: forecast})
	svc := NewMilestoneService(
		&fakeSettingsRepo{settings: settings},
		joinRepo,
		client,
		chain,
		renderer,
		growth.NewCooldown(3*time.Second),
		predict.DefaultHorizonDays,
		testLogger(),
	)
	return svc, renderer
}

func TestMilestoneBranchAnnouncesAndRefines(t *testing.T) {
	// Ten joins on consecutive days with increment 10: the tenth join is
	// a milestone and the next target is 20. Under a linear continuation
	// the next milestone lands ten days after the last join.
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	joins := consecutiveJoins(base, 10)
	lastJoin := joins[len(joins)-1]
	predicted := lastJoin.AddDate(0, 0, 10)
	client := newFakeClient(10)
	svc, renderer := newService(enabledSettings(42, 10), &fakeJoinRepo{joins: joins}, client, &predict.Result{PredictedDate: predicted})

	err := svc.HandleMemberJoin(context.Background(), 42)

	require.NoError(t, err)
	require.Len(t, client.captions, 1, "milestone announcement carries a chart")
	assert.Contains(t, client.captions[0], "10人達成")
	assert.Equal(t, 1, renderer.calls)

	select {
	case edited := <-client.edited:
		assert.Contains(t, edited, client.captions[0], "refinement appends to the original announcement")
		assert.Contains(t, edited, "20人達成の予測日")
		assert.Contains(t, edited, predicted.Format("2006-01-02"))
	case <-time.After(editWait):
		t.Fatal("refinement never edited the announcement")
	}
}

func TestNonMilestoneBranchAnnouncesProgress(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	joins := consecutiveJoins(base, 13)
	predicted := joins[len(joins)-1].AddDate(0, 0, 7)
	client := newFakeClient(13)
	svc, renderer := newService(enabledSettings(42, 10), &fakeJoinRepo{joins: joins}, client, &predict.Result{PredictedDate: predicted})

	err := svc.HandleMemberJoin(context.Background(), 42)

	require.NoError(t, err)
	require.Len(t, client.texts, 1)
	assert.Contains(t, client.texts[0], "現在のメンバー数: 13人")
	assert.Contains(t, client.texts[0], "あと 7 人で 20人達成")
	assert.Equal(t, 0, renderer.calls, "progress messages carry no chart")

	select {
	case edited := <-client.edited:
		assert.Contains(t, edited, "20人達成の予測日")
	case <-time.After(editWait):
		t.Fatal("refinement never edited the announcement")
	}
}

func TestNoRefinementEditWhenForecastUnavailable(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	client := newFakeClient(13)
	svc, _ := newService(enabledSettings(42, 10), &fakeJoinRepo{joins: consecutiveJoins(base, 13)}, client, nil)

	err := svc.HandleMemberJoin(context.Background(), 42)

	require.NoError(t, err)
	require.Len(t, client.texts, 1, "the synchronous message is delivered regardless")
	select {
	case <-client.edited:
		t.Fatal("no edit expected when the chain produces no forecast")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestJoinsInsideCooldownWindowAreDropped(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	client := newFakeClient(13)
	svc, _ := newService(enabledSettings(42, 10), &fakeJoinRepo{joins: consecutiveJoins(base, 13)}, client, nil)

	require.NoError(t, svc.HandleMemberJoin(context.Background(), 42))
	require.NoError(t, svc.HandleMemberJoin(context.Background(), 42))

	assert.Equal(t, 1, client.sentCount(), "the duplicate delivery must be silent")
}

func TestDuplicateJoinDeliveryRecordedOnce(t *testing.T) {
	// Telegram can deliver the same underlying join more than once in rapid
	// succession; only the accepted delivery may enter the join history, or
	// every future fit is trained on an inflated curve.
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	repo := &fakeJoinRepo{joins: consecutiveJoins(base, 13)}
	client := newFakeClient(13)
	svc, _ := newService(enabledSettings(42, 10), repo, client, nil)

	require.NoError(t, svc.HandleMemberJoin(context.Background(), 42))
	require.NoError(t, svc.HandleMemberJoin(context.Background(), 42))

	assert.Len(t, repo.joins, 14, "the dropped duplicate must not reach the history")
}

func TestDisabledChatIsIgnored(t *testing.T) {
	settings := enabledSettings(42, 10)
	settings.Enabled = false
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	repo := &fakeJoinRepo{joins: consecutiveJoins(base, 13)}
	client := newFakeClient(13)
	svc, _ := newService(settings, repo, client, nil)

	require.NoError(t, svc.HandleMemberJoin(context.Background(), 42))
	assert.Equal(t, 0, client.sentCount())
	assert.Len(t, repo.joins, 14, "joins accrue even while announcements are off")
}

func TestUnconfiguredChatIsIgnored(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	client := newFakeClient(13)
	svc, _ := newService(nil, &fakeJoinRepo{joins: consecutiveJoins(base, 13)}, client, nil)

	require.NoError(t, svc.HandleMemberJoin(context.Background(), 42))
	assert.Equal(t, 0, client.sentCount())
}

func TestLeaveNoticeWhenEnabled(t *testing.T) {
	settings := enabledSettings(42, 10)
	settings.NotifyOnLeave = true
	client := newFakeClient(12)
	svc, _ := newService(settings, &fakeJoinRepo{}, client, nil)

	require.NoError(t, svc.HandleMemberLeave(context.Background(), 42))
	require.Len(t, client.texts, 1)
	assert.Contains(t, client.texts[0], fmt.Sprintf("現在のメンバー数: %d人", 12))
}

func TestLeaveNoticeOffByDefault(t *testing.T) {
	client := newFakeClient(12)
	svc, _ := newService(enabledSettings(42, 10), &fakeJoinRepo{}, client, nil)

	require.NoError(t, svc.HandleMemberLeave(context.Background(), 42))
	assert.Equal(t, 0, client.sentCount())
}
