// ABOUTME: Typed results produced by decoding a QR payload.
// ABOUTME: Closed set of variants (url, link, mail, sms, telephone, text, contact) with validation.

package qrcode

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// Kind tags a QrCode variant.
type Kind string

const (
	KindURL       Kind = "url"
	KindHTTPLink  Kind = "http_link"
	KindMail      Kind = "mail"
	KindSMS       Kind = "sms"
	KindTelephone Kind = "telephone"
	KindText      Kind = "text"
	KindContact   Kind = "contact"
)

// Kinds returns every known kind in display order.
func Kinds() []Kind {
	return []Kind{KindURL, KindHTTPLink, KindMail, KindSMS, KindTelephone, KindText, KindContact}
}

// Valid reports whether k names a known variant.
func (k Kind) Valid() bool {
	for _, known := range Kinds() {
		if k == known {
			return true
		}
	}
	return false
}

// QrCode is a decoded payload. Implementations live in this package only.
type QrCode interface {
	Kind() Kind
	// Fields returns the variant's values keyed by field name. Empty values are omitted.
	Fields() map[string]string
	String() string

	sealed()
}

var (
	ErrInvalidLink     = errors.New("link is not an absolute URL")
	ErrMissingReceiver = errors.New("receiver is required")
	ErrEmptyTelephone  = errors.New("telephone is required")
	ErrEmptyContact    = errors.New("contact needs a name, telephone or email")
	ErrUnknownKind     = errors.New("unknown kind")
)

// URL is an absolute URI of any scheme.
type URL struct {
	link  string
	title string
}

// NewURL validates raw as an absolute URI.
func NewURL(raw, title string) (*URL, error) {
	u, err := url.Parse(raw)
	if err != nil || !u.IsAbs() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidLink, raw)
	}
	return &URL{link: raw, title: title}, nil
}

func (u *URL) Kind() Kind     { return KindURL }
func (u *URL) Link() string   { return u.link }
func (u *URL) Title() string  { return u.title }
func (u *URL) String() string { return u.link }
func (u *URL) sealed()        {}

func (u *URL) Fields() map[string]string {
	return compact(map[string]string{"link": u.link, "title": u.title})
}

// HTTPLink is an absolute http or https URL.
type HTTPLink struct {
	link string
}

// NewHTTPLink validates raw as an absolute http(s) URL with a host.
func NewHTTPLink(raw string) (*HTTPLink, error) {
	u, err := url.Parse(raw)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidLink, raw)
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidLink, raw)
	}
	return &HTTPLink{link: raw}, nil
}

func (h *HTTPLink) Kind() Kind     { return KindHTTPLink }
func (h *HTTPLink) Link() string   { return h.link }
func (h *HTTPLink) String() string { return h.link }
func (h *HTTPLink) sealed()        {}

func (h *HTTPLink) Fields() map[string]string {
	return map[string]string{"link": h.link}
}

// Mail is an e-mail draft.
type Mail struct {
	receiver string
	subject  string
	body     string
}

func NewMail(receiver, subject, body string) (*Mail, error) {
	if strings.TrimSpace(receiver) == "" {
		return nil, ErrMissingReceiver
	}
	return &Mail{receiver: receiver, subject: subject, body: body}, nil
}

func (m *Mail) Kind() Kind       { return KindMail }
func (m *Mail) Receiver() string { return m.receiver }
func (m *Mail) Subject() string  { return m.subject }
func (m *Mail) Body() string     { return m.body }
func (m *Mail) sealed()          {}

func (m *Mail) String() string {
	return fmt.Sprintf("mail to %s: %s", m.receiver, m.subject)
}

func (m *Mail) Fields() map[string]string {
	return compact(map[string]string{"receiver": m.receiver, "subject": m.subject, "body": m.body})
}

// SMS is a text message draft. Receiver may hold several comma-joined numbers.
type SMS struct {
	receiver string
	body     string
}

func NewSMS(receiver, body string) (*SMS, error) {
	if strings.TrimSpace(receiver) == "" {
		return nil, ErrMissingReceiver
	}
	return &SMS{receiver: receiver, body: body}, nil
}

func (s *SMS) Kind() Kind       { return KindSMS }
func (s *SMS) Receiver() string { return s.receiver }
func (s *SMS) Body() string     { return s.body }
func (s *SMS) sealed()          {}

// Receivers splits the receiver list.
func (s *SMS) Receivers() []string {
	return splitList(s.receiver)
}

func (s *SMS) String() string {
	return fmt.Sprintf("sms to %s", s.receiver)
}

func (s *SMS) Fields() map[string]string {
	return compact(map[string]string{"receiver": s.receiver, "body": s.body})
}

// Telephone is a number to dial.
type Telephone struct {
	telephone string
}

func NewTelephone(telephone string) (*Telephone, error) {
	if telephone == "" {
		return nil, ErrEmptyTelephone
	}
	return &Telephone{telephone: telephone}, nil
}

func (t *Telephone) Kind() Kind        { return KindTelephone }
func (t *Telephone) Telephone() string { return t.telephone }
func (t *Telephone) String() string    { return t.telephone }
func (t *Telephone) sealed()           {}

func (t *Telephone) Fields() map[string]string {
	return map[string]string{"telephone": t.telephone}
}

// Text is free text.
type Text struct {
	text string
}

func NewText(text string) *Text {
	return &Text{text: text}
}

func (t *Text) Kind() Kind     { return KindText }
func (t *Text) Text() string   { return t.text }
func (t *Text) String() string { return t.text }
func (t *Text) sealed()        {}

func (t *Text) Fields() map[string]string {
	return map[string]string{"text": t.text}
}

// Contact is an address-book entry.
type Contact struct {
	name         string
	telephones   []string
	emails       []string
	address      string
	url          string
	organization string
	note         string
}

// ContactInfo carries the constructor arguments for NewContact.
type ContactInfo struct {
	Name         string
	Telephones   []string
	Emails       []string
	Address      string
	URL          string
	Organization string
	Note         string
}

func NewContact(info ContactInfo) (*Contact, error) {
	telephones := nonEmpty(info.Telephones)
	emails := nonEmpty(info.Emails)
	if strings.TrimSpace(info.Name) == "" && len(telephones) == 0 && len(emails) == 0 {
		return nil, ErrEmptyContact
	}
	return &Contact{
		name:         info.Name,
		telephones:   telephones,
		emails:       emails,
		address:      info.Address,
		url:          info.URL,
		organization: info.Organization,
		note:         info.Note,
	}, nil
}

func (c *Contact) Kind() Kind           { return KindContact }
func (c *Contact) Name() string         { return c.name }
func (c *Contact) Telephones() []string { return append([]string(nil), c.telephones...) }
func (c *Contact) Emails() []string     { return append([]string(nil), c.emails...) }
func (c *Contact) Address() string      { return c.address }
func (c *Contact) URL() string          { return c.url }
func (c *Contact) Organization() string { return c.organization }
func (c *Contact) Note() string         { return c.note }
func (c *Contact) sealed()              {}

func (c *Contact) String() string {
	if c.name != "" {
		return c.name
	}
	if len(c.telephones) > 0 {
		return c.telephones[0]
	}
	return c.emails[0]
}

func (c *Contact) Fields() map[string]string {
	return compact(map[string]string{
		"name":         c.name,
		"telephone":    strings.Join(c.telephones, ","),
		"email":        strings.Join(c.emails, ","),
		"address":      c.address,
		"url":          c.url,
		"organization": c.organization,
		"note":         c.note,
	})
}

func compact(fields map[string]string) map[string]string {
	for k, v := range fields {
		if v == "" {
			delete(fields, k)
		}
	}
	return fields
}

func nonEmpty(values []string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func splitList(s string) []string {
	return nonEmpty(strings.Split(s, ","))
}
