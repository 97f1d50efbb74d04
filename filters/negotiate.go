package filters

import (
	"context"
	"strings"

	"github.com/munnerz/goautoneg"

	"github.com/shravanasati/relay/extract"
	"github.com/shravanasati/relay/request"
	"github.com/shravanasati/relay/response"
	"github.com/shravanasati/relay/router"
)

// Accept extracts the media type among offers that the Accept header
// prefers. Offers are full "type/subtype" strings, the server's favourite
// first: it wins ties and answers requests without an Accept header. A
// request that accepts none of them fails with 406 Not Acceptable.
func Accept(offers ...string) Extractor[string] {
	if len(offers) == 0 {
		panic("filters: Accept needs at least one offer")
	}
	return extract.Func(func(_ context.Context, r *request.Request) (string, error) {
		if mt, ok := negotiate(r.Headers.Get("accept"), offers); ok {
			return mt, nil
		}
		return "", router.Errorf(response.StatusNotAcceptable, "acceptable types are %s", strings.Join(offers, ", "))
	})
}

// negotiate picks the offer with the highest quality. Each offer is rated
// by the most specific clause that matches it, so "text/html;q=0" refuses
// text/html even next to "*/*".
func negotiate(header string, offers []string) (string, bool) {
	if strings.TrimSpace(header) == "" {
		return offers[0], true
	}
	clauses := goautoneg.ParseAccept(header)

	best, bestQ := "", 0.0
	for _, offer := range offers {
		if q := quality(clauses, offer); q > bestQ {
			best, bestQ = offer, q
		}
	}
	return best, bestQ > 0
}

func quality(clauses []goautoneg.Accept, offer string) float64 {
	typ, sub, _ := strings.Cut(offer, "/")
	q, specificity := 0.0, -1
	for _, c := range clauses {
		s := -1
		switch {
		case strings.EqualFold(c.Type, typ) && strings.EqualFold(c.SubType, sub):
			s = 2
		case strings.EqualFold(c.Type, typ) && c.SubType == "*":
			s = 1
		case c.Type == "*" && c.SubType == "*":
			s = 0
		}
		if s > specificity {
			q, specificity = c.Q, s
		}
	}
	return q
}
