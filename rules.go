package timecheck

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
)

type Rules []Rule

// Rule applies overrides to the requests it matches.
// Empty match fields match everything.
type Rule struct {
	Prefix    string    `yaml:"prefix"`
	Path      string    `yaml:"path"`
	Method    string    `yaml:"method"`
	Overrides Overrides `yaml:"overrides"`
}

// Overrides returns the overrides of the first matching rule.
func (r Rules) Overrides(req *http.Request) Overrides {
	if rule := r.find(req); rule != nil {
		return rule.Overrides
	}
	return Overrides{}
}

func (r Rules) find(req *http.Request) *Rule {
	for i := range r {
		rule := &r[i]
		if rule.Method != "" && !strings.EqualFold(rule.Method, req.Method) {
			continue
		}
		if rule.Path != "" && rule.Path != req.URL.Path {
			continue
		}
		if rule.Prefix != "" && !strings.HasPrefix(req.URL.Path, rule.Prefix) {
			continue
		}
		log.Trace().Msgf("Request %s:%s matched rule %+v", req.Method, req.URL.Path, *rule)
		return rule
	}
	return nil
}
