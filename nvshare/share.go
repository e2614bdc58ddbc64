// Package nvshare encodes a diagram into a URL fragment and back.
//
// Two fragment forms exist: #schema=<base64 JSON payload> and the legacy
// #dsl=<base64 DSL text>.
package nvshare

import (
	"encoding/json"
	"errors"
	"net/url"
	"strings"

	"oss.terrastruct.com/xdefer"

	"oss.terrastruct.com/navani/lib/urlenc"
	"oss.terrastruct.com/navani/nvoracle"
	"oss.terrastruct.com/navani/nvstate"
)

const (
	schemaPrefix = "schema="
	dslPrefix    = "dsl="
)

var ErrNothingToShare = errors.New("nothing to share")

type Payload struct {
	DSL        string            `json:"dsl"`
	Icons      map[string]string `json:"icons"`
	Colors     map[string]string `json:"colors"`
	SchemaName string            `json:"schemaName"`
}

// FromState captures the icons and colors of st alongside dsl.
func FromState(st *nvstate.State, dsl string) *Payload {
	return &Payload{
		DSL:        dsl,
		Icons:      st.Schema.Icons(),
		Colors:     st.Schema.Colors(),
		SchemaName: strings.TrimSpace(st.Name),
	}
}

// Fragment returns the URL fragment for p without the leading #.
func Fragment(p *Payload) (_ string, err error) {
	defer xdefer.Errorf(&err, "failed to encode share fragment")

	if strings.TrimSpace(p.DSL) == "" {
		return "", ErrNothingToShare
	}
	p2 := *p
	p2.DSL = strings.TrimSpace(p.DSL)
	if p2.Icons == nil {
		p2.Icons = map[string]string{}
	}
	if p2.Colors == nil {
		p2.Colors = map[string]string{}
	}
	b, err := json.Marshal(&p2)
	if err != nil {
		return "", err
	}
	return schemaPrefix + urlenc.Encode(string(b)), nil
}

// URL sets the share fragment of p on base.
func URL(base string, p *Payload) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	frag, err := Fragment(p)
	if err != nil {
		return "", err
	}
	u.Fragment = frag
	return u.String(), nil
}

// Decode parses a fragment in either form, with or without the leading #.
// A full URL is accepted too. ok is false when there is nothing to load.
func Decode(fragment string) (_ *Payload, ok bool) {
	if i := strings.IndexByte(fragment, '#'); i >= 0 {
		fragment = fragment[i+1:]
	}

	var p Payload
	switch {
	case strings.HasPrefix(fragment, schemaPrefix):
		s, err := urlenc.Decode(unescape(fragment[len(schemaPrefix):]))
		if err != nil {
			return nil, false
		}
		if err := json.Unmarshal([]byte(s), &p); err != nil {
			return nil, false
		}
	case strings.HasPrefix(fragment, dslPrefix):
		s, err := urlenc.Decode(unescape(fragment[len(dslPrefix):]))
		if err != nil {
			return nil, false
		}
		p.DSL = s
	default:
		return nil, false
	}

	if strings.TrimSpace(p.DSL) == "" {
		return nil, false
	}
	if p.Icons == nil {
		p.Icons = map[string]string{}
	}
	if p.Colors == nil {
		p.Colors = map[string]string{}
	}
	return &p, true
}

func unescape(s string) string {
	if u, err := url.PathUnescape(s); err == nil {
		return u
	}
	return s
}

// Apply loads p into st: the icons and colors become pending for the parse
// of p.DSL and a non-empty SchemaName renames the diagram.
func Apply(st *nvstate.State, p *Payload) error {
	st.PendingIcons = p.Icons
	st.PendingColors = p.Colors
	if err := nvoracle.ApplyParse(st, p.DSL); err != nil {
		st.PendingIcons = nil
		st.PendingColors = nil
		return err
	}
	if p.SchemaName != "" {
		st.Name = p.SchemaName
	}
	return nil
}
