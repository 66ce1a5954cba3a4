package docquery

// CandidateContainerSelectors locate list entries on a film list page.
// Groups are tried in order; the first group that matches anything wins,
// so an older layout never mixes with a newer one on the same page.
//
//nolint:gochecknoglobals // This is a static lookup table that must be global
var CandidateContainerSelectors = []string{
	"li.poster-container",
	"li.posteritem, li.griditem",
}

// titleAttributes hold the film name on container or poster elements when
// the image has no usable alt text.
//
//nolint:gochecknoglobals
var titleAttributes = []string{
	"data-film-name",
	"data-item-name",
}

const (
	posterImageSelector = "img"
	magnetLinkSelector  = `a[href^="magnet:"]`
	altTextPrefix       = "Poster for "
)
