package mailtpl

import "strings"

// PlaceholderToken is the literal marker users put in the template where a
// device's sharefile link belongs.
const PlaceholderToken = "[Insert Link Here]"

// TemplateSource returns the stored template body.
type TemplateSource interface {
	Get() (string, error)
}

// Renderer substitutes the placeholder with a concrete sharefile link.
type Renderer struct{ src TemplateSource }

func NewRenderer(src TemplateSource) *Renderer { return &Renderer{src: src} }

func (r *Renderer) Render(sharefileLink string) (string, error) {
	body, err := r.src.Get()
	if err != nil {
		return "", err
	}
	return strings.ReplaceAll(body, PlaceholderToken, sharefileLink), nil
}
