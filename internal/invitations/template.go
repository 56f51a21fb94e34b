package invitations

import (
	"bytes"
	"fmt"
	"html/template"
	"net/url"
)

var invitationTemplate = template.Must(template.New("invitation").Parse(`<!DOCTYPE html>
<html>
<body>
<p>{{.InviterName}} invited you to join <strong>{{.EstateName}}</strong> as {{.RoleName}}.</p>
<p><a href="{{.AcceptURL}}">Accept invitation</a></p>
<p>This invitation expires on {{.Expires}}.</p>
</body>
</html>`))

// Renderer produces the subject and HTML body of invitation emails.
type Renderer struct {
	acceptURL string
}

// NewRenderer returns a Renderer linking to acceptURL with the code as a query parameter.
func NewRenderer(acceptURL string) *Renderer {
	return &Renderer{acceptURL: acceptURL}
}

// Subject returns the email subject for p.
func (r *Renderer) Subject(p Payload) string {
	return fmt.Sprintf("%s invited you to %s", p.InviterName, p.EstateName)
}

// Render returns the HTML body for m.
func (r *Renderer) Render(m Mail) (string, error) {
	link, err := r.link(m.Invitation.Code)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	err = invitationTemplate.Execute(&buf, struct {
		InviterName, EstateName, RoleName, Expires string
		AcceptURL                                  template.URL
	}{
		InviterName: m.Payload.InviterName,
		EstateName:  m.Payload.EstateName,
		RoleName:    m.Payload.RoleName,
		Expires:     m.Payload.ExpirationDate.Format("January 2, 2006 15:04 MST"),
		AcceptURL:   template.URL(link),
	})
	if err != nil {
		return "", fmt.Errorf("render invitation: %w", err)
	}
	return buf.String(), nil
}

func (r *Renderer) link(code string) (string, error) {
	u, err := url.Parse(r.acceptURL)
	if err != nil {
		return "", fmt.Errorf("parse accept url: %w", err)
	}
	q := u.Query()
	q.Set("code", code)
	u.RawQuery = q.Encode()
	return u.String(), nil
}
