package weblogin

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Form is a scraped login form: the submission URL and the fields the
// provider expects posted back (hidden CSRF tokens and the like).
type Form struct {
	// Action is the form submission URL, resolved against the login page.
	Action string

	// Fields maps input names to their literal values.
	Fields url.Values
}

// FormExtractor pulls the login form out of a provider's HTML page.
// It is an interface so a provider-specific adapter can replace the
// generic extraction without touching the rest of the flow.
type FormExtractor interface {
	ExtractLoginForm(page string) (*Form, error)
}

// htmlFormExtractor extracts forms with a real HTML parser.
type htmlFormExtractor struct{}

// NewFormExtractor returns the default HTML-parsing FormExtractor.
func NewFormExtractor() FormExtractor {
	return htmlFormExtractor{}
}

// ExtractLoginForm finds the first form element, its action attribute and
// every named input carrying a literal value. Inputs without a value
// attribute (empty text boxes) are skipped.
func (htmlFormExtractor) ExtractLoginForm(page string) (*Form, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnexpectedLoginPage, err)
	}

	form := doc.Find("form").First()
	if form.Length() == 0 {
		return nil, fmt.Errorf("%w: no form element", ErrUnexpectedLoginPage)
	}

	action, ok := form.Attr("action")
	if !ok || strings.TrimSpace(action) == "" {
		return nil, fmt.Errorf("%w: form has no action", ErrUnexpectedLoginPage)
	}

	fields := url.Values{}
	form.Find("input").Each(func(_ int, input *goquery.Selection) {
		name, ok := input.Attr("name")
		if !ok || name == "" {
			return
		}
		value, ok := input.Attr("value")
		if !ok {
			return
		}
		fields.Set(name, value)
	})

	return &Form{Action: action, Fields: fields}, nil
}

// rejectionCause extracts a human-readable failure reason from a provider
// error page. Providers render the cause inside the first strong element;
// anything else yields "unknown cause".
func rejectionCause(page string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err == nil {
		if cause := strings.TrimSpace(doc.Find("strong").First().Text()); cause != "" {
			return cause
		}
	}
	return "unknown cause"
}
