// ABOUTME: Display schema for each QR code kind.
// ABOUTME: Lists field labels and types in the order renderers present them.

package view

import "github.com/2389/qreader/internal/qrcode"

// Field describes one displayed value of a kind.
type Field struct {
	Name    string
	Display string
	Type    string // "string", "link", "email", "tel", "multiline"
}

// Schema is the display description of a kind.
type Schema struct {
	Kind    qrcode.Kind
	Display string
	Fields  []Field
}

var schemas = map[qrcode.Kind]Schema{
	qrcode.KindURL: {
		Kind: qrcode.KindURL, Display: "Link",
		Fields: []Field{
			{Name: "title", Display: "Title", Type: "string"},
			{Name: "link", Display: "Link", Type: "link"},
		},
	},
	qrcode.KindHTTPLink: {
		Kind: qrcode.KindHTTPLink, Display: "Web Link",
		Fields: []Field{
			{Name: "link", Display: "Link", Type: "link"},
		},
	},
	qrcode.KindMail: {
		Kind: qrcode.KindMail, Display: "E-mail",
		Fields: []Field{
			{Name: "receiver", Display: "To", Type: "email"},
			{Name: "subject", Display: "Subject", Type: "string"},
			{Name: "body", Display: "Body", Type: "multiline"},
		},
	},
	qrcode.KindSMS: {
		Kind: qrcode.KindSMS, Display: "Text Message",
		Fields: []Field{
			{Name: "receiver", Display: "To", Type: "tel"},
			{Name: "body", Display: "Message", Type: "multiline"},
		},
	},
	qrcode.KindTelephone: {
		Kind: qrcode.KindTelephone, Display: "Phone Number",
		Fields: []Field{
			{Name: "telephone", Display: "Number", Type: "tel"},
		},
	},
	qrcode.KindText: {
		Kind: qrcode.KindText, Display: "Text",
		Fields: []Field{
			{Name: "text", Display: "Text", Type: "multiline"},
		},
	},
	qrcode.KindContact: {
		Kind: qrcode.KindContact, Display: "Contact",
		Fields: []Field{
			{Name: "name", Display: "Name", Type: "string"},
			{Name: "organization", Display: "Organization", Type: "string"},
			{Name: "telephone", Display: "Phone", Type: "tel"},
			{Name: "email", Display: "E-mail", Type: "email"},
			{Name: "address", Display: "Address", Type: "multiline"},
			{Name: "url", Display: "Website", Type: "link"},
			{Name: "note", Display: "Note", Type: "multiline"},
		},
	},
}

// SchemaFor returns the display schema of kind. Unknown kinds get a schema
// with no fields titled by the kind itself.
func SchemaFor(kind qrcode.Kind) Schema {
	if s, ok := schemas[kind]; ok {
		return s
	}
	return Schema{Kind: kind, Display: string(kind)}
}
