// Package mail delivers campaign emails over SMTP.
package mail

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime"
	"net"
	"net/smtp"
	"net/textproto"
	"strconv"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/google/uuid"

	"donorcrm/internal/infra"
)

// Message is one HTML email to a single recipient.
type Message struct {
	From    string
	To      string
	Subject string
	HTML    string
}

// Sender delivers a message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Options configures the SMTP client.
type Options struct {
	Host       string
	Port       int
	Username   string
	Password   string
	From       string
	Logger     *infra.Logger
	Attempts   uint
	RetryDelay time.Duration
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// SMTPClient sends messages with PLAIN auth, retrying transient failures.
type SMTPClient struct {
	addr     string
	host     string
	auth     smtp.Auth
	from     string
	logger   *infra.Logger
	attempts uint
	delay    time.Duration
	send     sendFunc
	now      func() time.Time
}

func NewSMTPClient(opts Options) *SMTPClient {
	port := opts.Port
	if port == 0 {
		port = 587
	}
	attempts := opts.Attempts
	if attempts == 0 {
		attempts = 3
	}
	delay := opts.RetryDelay
	if delay <= 0 {
		delay = time.Second
	}
	logger := opts.Logger
	if logger == nil {
		nop := infra.NopLogger()
		logger = &nop
	}
	var auth smtp.Auth
	if opts.Username != "" {
		auth = smtp.PlainAuth("", opts.Username, opts.Password, opts.Host)
	}
	return &SMTPClient{
		addr:     net.JoinHostPort(opts.Host, strconv.Itoa(port)),
		host:     opts.Host,
		auth:     auth,
		from:     opts.From,
		logger:   logger,
		attempts: attempts,
		delay:    delay,
		send:     smtp.SendMail,
		now:      time.Now,
	}
}

// Send delivers msg. 5xx SMTP replies are permanent and not retried.
func (c *SMTPClient) Send(ctx context.Context, msg Message) error {
	from := msg.From
	if from == "" {
		from = c.from
	}
	if from == "" || msg.To == "" {
		return errors.New("mail: sender and recipient are required")
	}
	body := c.build(from, msg)
	return retry.Do(
		func() error {
			return c.send(c.addr, c.auth, from, []string{msg.To}, body)
		},
		retry.Context(ctx),
		retry.Attempts(c.attempts),
		retry.Delay(c.delay),
		retry.LastErrorOnly(true),
		retry.RetryIf(isTransient),
		retry.OnRetry(func(attempt uint, err error) {
			c.logger.Warn().Err(err).Uint("attempt", attempt+1).Str("to", msg.To).Msg("mail: retrying send")
		}),
	)
}

func (c *SMTPClient) build(from string, msg Message) []byte {
	var b bytes.Buffer
	header := func(k, v string) { fmt.Fprintf(&b, "%s: %s\r\n", k, v) }
	header("From", from)
	header("To", msg.To)
	header("Subject", mime.QEncoding.Encode("utf-8", msg.Subject))
	header("Date", c.now().Format(time.RFC1123Z))
	header("Message-ID", fmt.Sprintf("<%s@%s>", uuid.NewString(), c.host))
	header("MIME-Version", "1.0")
	header("Content-Type", `text/html; charset="UTF-8"`)
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(strings.ReplaceAll(msg.HTML, "\r\n", "\n"), "\n", "\r\n"))
	return b.Bytes()
}

func isTransient(err error) bool {
	var protoErr *textproto.Error
	if errors.As(err, &protoErr) {
		return protoErr.Code < 500
	}
	return true
}

// LogSender only logs messages. It stands in when no SMTP host is set.
type LogSender struct {
	Logger infra.Logger
}

func (s LogSender) Send(_ context.Context, msg Message) error {
	s.Logger.Info().Str("to", msg.To).Str("subject", msg.Subject).Msg("mail: smtp not configured, message logged only")
	return nil
}
