// ABOUTME: Static sample payloads used when OpenAI is not available.
// ABOUTME: Covers every built-in scheme plus payloads no decoder accepts.

package seed

import "context"

var staticPayloads = []string{
	"https://example.com/menu",
	"http://example.org",
	"URLTO:https://example.com/tickets",
	"MEBKM:TITLE:Conference schedule;URL:https://example.com/schedule;;",
	"mailto:hello@example.com?subject=Hi&body=Saw%20your%20poster",
	"MATMSG:TO:support@example.com;SUB:Order 1234;BODY:Where is my parcel?;;",
	"tel:+15555550100",
	"SMSTO:+15555550123:Table for two at 8",
	"sms:+15555550199?body=Vote%20yes",
	"MMSTO:+15555550142:Photo attached",
	"MECARD:N:Doe,Jane;TEL:+15555550111;EMAIL:jane@example.com;ADR:1 Main St;ORG:Acme;;",
	"BIZCARD:N:John;X:Smith;C:Example Corp;T:Engineer;B:+15555550177;E:john@example.com;;",
	"BEGIN:VCARD\r\nVERSION:3.0\r\nFN:Ada Lovelace\r\nTEL;TYPE=CELL:+15555550188\r\nEMAIL:ada@example.com\r\nEND:VCARD",
	"TEXT:Gate code is 4521",
	// no decoder for these
	"WIFI:S:guest;T:WPA;P:welcome;;",
	"geo:37.786971,-122.399677",
	"just some words with no scheme",
	"mailto:",
	"tel:",
}

// StaticPayloads returns a copy of the built-in sample payloads.
func StaticPayloads() []string {
	return append([]string(nil), staticPayloads...)
}

// Scanner decodes and records one payload for device.
type Scanner interface {
	Scan(ctx context.Context, device string, payload []byte) (decoded bool, err error)
}

// Summary counts the outcome of a seeding run.
type Summary struct {
	Total   int
	Decoded int
	Failed  int
}

// Run scans every payload for device. Storage errors stop the run.
func Run(ctx context.Context, s Scanner, device string, payloads []string) (*Summary, error) {
	sum := &Summary{}
	for _, p := range payloads {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		decoded, err := s.Scan(ctx, device, []byte(p))
		if err != nil {
			return sum, err
		}
		sum.Total++
		if decoded {
			sum.Decoded++
		} else {
			sum.Failed++
		}
	}
	return sum, nil
}
