package main

import (
	"fmt"
	"net/http"

	"gopkg.in/dnaeon/go-vcr.v3/cassette"
	"gopkg.in/dnaeon/go-vcr.v3/recorder"

	"github.com/tonimelisma/alfresco-fixtures/internal/alfresco"
)

// newRecorder wraps the real transport in a go-vcr recorder backed by the
// cassette at path. Existing interactions are replayed, new ones recorded.
// Credentials never reach the cassette.
func newRecorder(path string, real http.RoundTripper) (*recorder.Recorder, error) {
	r, err := recorder.NewWithOptions(&recorder.Options{
		CassetteName:       path,
		Mode:               recorder.ModeReplayWithNewEpisodes,
		SkipRequestLatency: true,
		RealTransport:      real,
	})
	if err != nil {
		return nil, fmt.Errorf("setting up recording %s: %w", path, err)
	}

	r.AddHook(scrubInteraction, recorder.AfterCaptureHook)
	r.SetMatcher(matchScrubbed)
	r.SetReplayableInteractions(true)

	return r, nil
}

// scrubInteraction removes credentials from a captured interaction.
func scrubInteraction(i *cassette.Interaction) error {
	delete(i.Request.Headers, "Authorization")
	i.Request.URL = alfresco.RedactURL(i.Request.URL)

	for _, key := range alfresco.SecretQueryParams {
		if i.Request.Form.Has(key) {
			i.Request.Form.Set(key, alfresco.Redacted)
		}
	}

	return nil
}

// matchScrubbed compares a live request against a recorded one after
// redacting the live request the same way the recording was.
func matchScrubbed(r *http.Request, i cassette.Request) bool {
	return r.Method == i.Method && alfresco.RedactURL(r.URL.String()) == i.URL
}
