// Package imap fetches recruitment emails from a live mailbox and decodes
// them into models.EmailMessage, implementing pipeline.MessageSource.
package imap

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	"github.com/emersion/go-message/mail"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/quaero/internal/common"
	"github.com/ternarybob/quaero/internal/models"
)

// Service fetches unread messages from a single IMAP mailbox.
type Service struct {
	cfg    common.IMAPConfig
	logger arbor.ILogger
}

// NewService creates an IMAP message source bound to cfg.
func NewService(cfg common.IMAPConfig, logger arbor.ILogger) *Service {
	return &Service{cfg: cfg, logger: logger}
}

// IsConfigured reports whether the minimum settings needed to connect are
// present.
func (s *Service) IsConfigured() bool {
	return s.cfg.Host != "" && s.cfg.Username != "" && s.cfg.Password != ""
}

// FetchMessages connects to the configured mailbox, fetches every unseen
// message in Mailbox (defaulting to INBOX), and decodes each into a
// models.EmailMessage. It implements pipeline.MessageSource.
func (s *Service) FetchMessages(ctx context.Context) ([]models.EmailMessage, error) {
	if !s.IsConfigured() {
		return nil, fmt.Errorf("imap: not configured (host, username, and password are required)")
	}

	mailbox := s.cfg.Mailbox
	if mailbox == "" {
		mailbox = "INBOX"
	}

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	var c *client.Client
	var err error

	if s.cfg.UseTLS {
		c, err = client.DialTLS(addr, nil)
	} else {
		c, err = client.Dial(addr)
	}
	if err != nil {
		return nil, fmt.Errorf("imap: connect to %s: %w", addr, err)
	}
	defer c.Logout()

	if err := c.Login(s.cfg.Username, s.cfg.Password); err != nil {
		return nil, fmt.Errorf("imap: login: %w", err)
	}

	mbox, err := c.Select(mailbox, false)
	if err != nil {
		return nil, fmt.Errorf("imap: select %s: %w", mailbox, err)
	}
	if mbox.Messages == 0 {
		return nil, nil
	}

	criteria := imap.NewSearchCriteria()
	criteria.WithoutFlags = []string{imap.SeenFlag}

	seqNums, err := c.Search(criteria)
	if err != nil {
		return nil, fmt.Errorf("imap: search: %w", err)
	}
	if len(seqNums) == 0 {
		return nil, nil
	}

	seqSet := new(imap.SeqSet)
	seqSet.AddNum(seqNums...)

	section := &imap.BodySectionName{}
	messages := make(chan *imap.Message, len(seqNums))

	done := make(chan error, 1)
	go func() {
		done <- c.Fetch(seqSet, []imap.FetchItem{imap.FetchEnvelope, imap.FetchFlags, section.FetchItem()}, messages)
	}()

	var out []models.EmailMessage
	for msg := range messages {
		if msg == nil || ctx.Err() != nil {
			continue
		}

		body, err := parseTextBody(msg, section)
		if err != nil {
			s.logger.Warn().Err(err).Uint32("seq", msg.SeqNum).Msg("imap: failed to parse message body")
			continue
		}

		out = append(out, decodeEnvelope(msg, body, mailbox))
	}

	if err := <-done; err != nil {
		return nil, fmt.Errorf("imap: fetch: %w", err)
	}
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	return out, nil
}

func decodeEnvelope(msg *imap.Message, body, mailbox string) models.EmailMessage {
	sender := ""
	if len(msg.Envelope.From) > 0 {
		sender = msg.Envelope.From[0].Address()
	}

	recipients := make([]string, 0, len(msg.Envelope.To))
	for _, addr := range msg.Envelope.To {
		recipients = append(recipients, addr.Address())
	}

	var receivedAt *time.Time
	if !msg.Envelope.Date.IsZero() {
		d := msg.Envelope.Date
		receivedAt = &d
	}

	return models.EmailMessage{
		SourcePath: fmt.Sprintf("imap://%s/%d", mailbox, msg.SeqNum),
		Subject:    msg.Envelope.Subject,
		Sender:     sender,
		Recipients: recipients,
		ReceivedAt: receivedAt,
		Body:       body,
		Parser:     "imap",
	}
}

// parseTextBody extracts the text/plain part from an IMAP message.
func parseTextBody(msg *imap.Message, section *imap.BodySectionName) (string, error) {
	r := msg.GetBody(section)
	if r == nil {
		return "", fmt.Errorf("no body section")
	}

	mr, err := mail.CreateReader(r)
	if err != nil {
		return "", fmt.Errorf("create mail reader: %w", err)
	}

	var body string
	for {
		p, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("read next part: %w", err)
		}

		if h, ok := p.Header.(*mail.InlineHeader); ok {
			contentType, _, _ := h.ContentType()
			if strings.HasPrefix(contentType, "text/plain") {
				b, err := io.ReadAll(p.Body)
				if err != nil {
					return "", fmt.Errorf("read body: %w", err)
				}
				body = string(b)
			}
		}
	}

	return strings.TrimSpace(body), nil
}

// MarkAsRead marks a message as seen so it is not fetched again.
func (s *Service) MarkAsRead(ctx context.Context, mailbox string, seqNum uint32) error {
	if !s.IsConfigured() {
		return fmt.Errorf("imap: not configured")
	}
	if mailbox == "" {
		mailbox = "INBOX"
	}

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	var c *client.Client
	var err error
	if s.cfg.UseTLS {
		c, err = client.DialTLS(addr, nil)
	} else {
		c, err = client.Dial(addr)
	}
	if err != nil {
		return fmt.Errorf("imap: connect: %w", err)
	}
	defer c.Logout()

	if err := c.Login(s.cfg.Username, s.cfg.Password); err != nil {
		return fmt.Errorf("imap: login: %w", err)
	}
	if _, err := c.Select(mailbox, false); err != nil {
		return fmt.Errorf("imap: select %s: %w", mailbox, err)
	}

	seqSet := new(imap.SeqSet)
	seqSet.AddNum(seqNum)

	item := imap.FormatFlagsOp(imap.AddFlags, true)
	flags := []interface{}{imap.SeenFlag}
	if err := c.Store(seqSet, item, flags, nil); err != nil {
		return fmt.Errorf("imap: mark as read: %w", err)
	}

	s.logger.Debug().Uint32("seq", seqNum).Msg("imap: marked message as read")
	return nil
}
