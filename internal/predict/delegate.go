package predict

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"os"
	"os/exec"
	"time"

	"github.com/sirupsen/logrus"
)

// Wire format shared with scripts/prophet_predict.py.
type helperInput struct {
	Dates  []string `json:"dates"`
	Target int      `json:"target"`
}

type helperOutput struct {
	PredictedDate *string `json:"predicted_date"`
	ImageBase64   *string `json:"image_base64"`
}

// Interpreter candidates tried in order; covers plain installs, distros
// shipping only python3, and the Windows launcher.
var helperInterpreters = [][]string{
	{"python3"},
	{"python"},
	{"py", "-3"},
}

// DelegatePredictor consults an external forecasting helper process. It is
// purely advisory: every failure mode (missing script, no interpreter,
// non-zero exit, garbage output) collapses to "no result", never an error.
type DelegatePredictor struct {
	scriptPath string
	logger     *logrus.Entry
}

func NewDelegatePredictor(scriptPath string, logger *logrus.Entry) *DelegatePredictor {
	return &DelegatePredictor{scriptPath: scriptPath, logger: logger}
}

func (p *DelegatePredictor) Forecast(ctx context.Context, history []time.Time, req Request) (*Result, error) {
	if _, err := os.Stat(p.scriptPath); err != nil {
		return nil, nil
	}

	input := helperInput{
		Dates:  make([]string, 0, len(history)),
		Target: req.Target,
	}
	for _, joined := range history {
		input.Dates = append(input.Dates, joined.UTC().Format("2006-01-02"))
	}
	payload, err := json.Marshal(input)
	if err != nil {
		p.logger.WithError(err).Warn("Could not serialize forecast helper input")
		return nil, nil
	}

	stdout, ok := p.runHelper(ctx, payload)
	if !ok {
		return nil, nil
	}
	return parseHelperOutput(stdout)
}

// runHelper spawns the first interpreter that starts, feeds it the payload
// on stdin and waits for it to exit. The wait is deliberately unbounded: a
// slow helper stalls only the single task that asked for the forecast.
func (p *DelegatePredictor) runHelper(ctx context.Context, payload []byte) ([]byte, bool) {
	for _, interp := range helperInterpreters {
		args := append(append([]string{}, interp[1:]...), p.scriptPath)
		cmd := exec.CommandContext(ctx, interp[0], args...)
		cmd.Stdin = bytes.NewReader(payload)

		stdout, err := cmd.Output()
		if err == nil {
			return stdout, true
		}
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			// The helper started and declined; do not retry with
			// another interpreter.
			p.logger.WithField("exit_code", exitErr.ExitCode()).Debug("Forecast helper exited non-zero")
			return nil, false
		}
		// Interpreter missing or unstartable: try the next candidate.
	}
	return nil, false
}

// parseHelperOutput decodes the helper reply. A missing predicted date or
// any malformed field means "no result".
func parseHelperOutput(stdout []byte) (*Result, error) {
	var out helperOutput
	if err := json.Unmarshal(stdout, &out); err != nil {
		return nil, nil
	}
	if out.PredictedDate == nil {
		return nil, nil
	}

	predicted, err := time.Parse(time.RFC3339, *out.PredictedDate)
	if err != nil {
		return nil, nil
	}

	chart := []byte{}
	if out.ImageBase64 != nil {
		chart, err = base64.StdEncoding.DecodeString(*out.ImageBase64)
		if err != nil {
			return nil, nil
		}
	}
	return &Result{PredictedDate: predicted.UTC(), Chart: chart}, nil
}
