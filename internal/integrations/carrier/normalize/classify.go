package normalize

import (
	"regexp"
	"strings"

	"github.com/BearBump/ParcelTrack/internal/models"
)

type keywordFamily struct {
	status models.ShipmentStatus
	re     *regexp.Regexp
}

// Порядок важен: первое совпадение выигрывает.
var keywordFamilies = []keywordFamily{
	{models.StatusDelivered, regexp.MustCompile(`delivered|delivrd|proof.?of.?delivery|signed`)},
	{models.StatusOutForDelivery, regexp.MustCompile(`out.?for.?delivery|with.?courier|on.?vehicle.?for.?delivery`)},
	{models.StatusException, regexp.MustCompile(`exception|failed|attempted|undeliverable|held|return.?to.?sender|customs`)},
	{models.StatusInTransit, regexp.MustCompile(`in.?transit|departed|arrived|processed|facility|hub|accepted|shipment.?received`)},
	{models.StatusCreated, regexp.MustCompile(`label.?created|info.?received|pending`)},
}

// ClassifyText guesses a status from free text. A package with no negative
// signal is assumed to be moving, so no match (or no text) gives in_transit.
func ClassifyText(texts ...string) models.ShipmentStatus {
	parts := make([]string, 0, len(texts))
	for _, t := range texts {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			parts = append(parts, t)
		}
	}
	if len(parts) == 0 {
		return models.StatusInTransit
	}
	haystack := strings.Join(parts, " ")
	for _, f := range keywordFamilies {
		if f.re.MatchString(haystack) {
			return f.status
		}
	}
	return models.StatusInTransit
}
