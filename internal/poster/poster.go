// Package poster implements the single-message posting flow: acquire a
// session, read one line from the operator, send it once.
package poster

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/agentwire/agentwire/pkg/logger"
	"github.com/agentwire/agentwire/pkg/session"
)

// Prompt is written to out before reading the message.
const Prompt = "Enter your message: "

// ErrNoInput is returned when the input ends before any text was typed.
var ErrNoInput = errors.New("no message entered")

// Acquirer is satisfied by *session.Manager.
type Acquirer interface {
	Acquire(ctx context.Context) (*session.ClientSession, error)
}

// Run performs exactly one post attempt. A non-2xx answer is logged and
// returned with a nil error; it is never retried. The caller owns in and
// closes it after Run returns.
func Run(ctx context.Context, mgr Acquirer, in io.Reader, out io.Writer, log logger.Logger) (*session.SendResult, error) {
	sess, err := mgr.Acquire(ctx)
	if err != nil {
		log.Error("could not establish a session: %v", err)
		return nil, err
	}

	text, err := readLine(in, out)
	if err != nil {
		log.Error("%v", err)
		return nil, err
	}

	log.Info("sending message (%d bytes)", len(text))
	res, err := sess.Client.SendMessage(ctx, text)
	if err != nil {
		log.Error("send failed: %v", err)
		return nil, fmt.Errorf("send message: %w", err)
	}
	if !res.OK() {
		log.Error("send rejected with status %d", res.Status)
		return res, nil
	}
	log.Info("message sent (status %d)", res.Status)
	return res, nil
}

func readLine(in io.Reader, out io.Writer) (string, error) {
	if _, err := io.WriteString(out, Prompt); err != nil {
		return "", fmt.Errorf("write prompt: %w", err)
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read message: %w", err)
	}
	if errors.Is(err, io.EOF) && line == "" {
		return "", ErrNoInput
	}
	return strings.TrimRight(line, "\r\n"), nil
}
