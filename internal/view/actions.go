// ABOUTME: Interactive actions offered for each decoded QR code.
// ABOUTME: Actions carry the URI a client opens to carry them out.

package view

import (
	"net/url"
	"strings"

	"github.com/2389/qreader/internal/qrcode"
)

// Action is something the user can do with a decoded code.
type Action struct {
	Name  string `json:"name"`
	Label string `json:"label"`
	// Href is empty for actions served by this application, such as saving a contact.
	Href string `json:"href,omitempty"`
}

// linkSchemes are the URI schemes rendered as clickable links. Anything else,
// javascript: and data: included, is shown as text only.
var linkSchemes = map[string]bool{
	"http":   true,
	"https":  true,
	"ftp":    true,
	"mailto": true,
	"tel":    true,
	"sms":    true,
	"geo":    true,
}

// SafeHref reports whether link may be used as an href.
func SafeHref(link string) bool {
	u, err := url.Parse(strings.TrimSpace(link))
	if err != nil {
		return false
	}
	return linkSchemes[strings.ToLower(u.Scheme)]
}

func openAction(label, link string) []Action {
	if !SafeHref(link) {
		return nil
	}
	return []Action{{Name: "open", Label: label, Href: link}}
}

// Actions lists the actions available for code.
func Actions(code qrcode.QrCode) []Action {
	switch c := code.(type) {
	case *qrcode.URL:
		return openAction("Open link", c.Link())
	case *qrcode.HTTPLink:
		return openAction("Open in browser", c.Link())
	case *qrcode.Mail:
		return []Action{{Name: "compose", Label: "Compose e-mail", Href: mailtoHref(c.Receiver(), c.Subject(), c.Body())}}
	case *qrcode.SMS:
		href := "sms:" + strings.Join(c.Receivers(), ",")
		if c.Body() != "" {
			href += "?body=" + url.QueryEscape(c.Body())
		}
		return []Action{{Name: "send", Label: "Send message", Href: href}}
	case *qrcode.Telephone:
		return []Action{{Name: "call", Label: "Call", Href: "tel:" + c.Telephone()}}
	case *qrcode.Text:
		return []Action{{Name: "copy", Label: "Copy text"}}
	case *qrcode.Contact:
		actions := []Action{{Name: "save", Label: "Save contact"}}
		for _, t := range c.Telephones() {
			actions = append(actions, Action{Name: "call", Label: "Call " + t, Href: "tel:" + t})
		}
		for _, e := range c.Emails() {
			actions = append(actions, Action{Name: "compose", Label: "E-mail " + e, Href: mailtoHref(e, "", "")})
		}
		if c.URL() != "" {
			actions = append(actions, openAction("Open website", c.URL())...)
		}
		return actions
	default:
		return nil
	}
}

func mailtoHref(receiver, subject, body string) string {
	query := url.Values{}
	if subject != "" {
		query.Set("subject", subject)
	}
	if body != "" {
		query.Set("body", body)
	}
	href := "mailto:" + receiver
	if len(query) > 0 {
		// '+' is literal in mailto URIs, so spaces must be percent-encoded
		href += "?" + strings.ReplaceAll(query.Encode(), "+", "%20")
	}
	return href
}
