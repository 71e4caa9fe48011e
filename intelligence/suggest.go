package intelligence

import (
	"fmt"
	"strings"

	"github.com/atomhq/atom/model/invocation"
)

// Intent verbs recognised by SuggestPipeline.
const (
	IntentCreate = "create"
	IntentRead   = "read"
	IntentUpdate = "update"
	IntentDelete = "delete"
	IntentNotify = "notify"
)

var intentVerbs = map[string]string{
	"create": IntentCreate, "add": IntentCreate, "new": IntentCreate,
	"post": IntentCreate, "send": IntentCreate, "schedule": IntentCreate,
	"open": IntentCreate,

	"read": IntentRead, "get": IntentRead, "list": IntentRead,
	"fetch": IntentRead, "find": IntentRead, "search": IntentRead,
	"show": IntentRead, "query": IntentRead,

	"update": IntentUpdate, "edit": IntentUpdate, "change": IntentUpdate,
	"modify": IntentUpdate, "move": IntentUpdate, "assign": IntentUpdate,

	"delete": IntentDelete, "remove": IntentDelete, "close": IntentDelete,
	"cancel": IntentDelete, "archive": IntentDelete,

	"notify": IntentNotify, "alert": IntentNotify, "announce": IntentNotify,
	"remind": IntentNotify, "ping": IntentNotify,
}

// DetectIntent returns the first intent verb found in the text, or "" when
// none is present.
func DetectIntent(text string) string {
	for _, token := range Tokenize(text) {
		for _, word := range strings.Fields(token) {
			if intent, ok := intentVerbs[word]; ok {
				return intent
			}
		}
	}
	return ""
}

// SuggestPipeline combines the detected intent with the ranked service
// candidates into a suggested linear pipeline.  Every candidate above the low
// band contributes one connector step; the method comes from the mapping's
// hints, falling back to "call".  Returns nil when the text matches nothing.
func (d *Detector) SuggestPipeline(text string) *invocation.Pipeline {
	detection := d.Detect(text)
	if len(detection.Candidates) == 0 {
		return nil
	}
	intent := DetectIntent(text)
	if intent == "" {
		intent = IntentRead
	}

	hints := make(map[string]map[string]string)
	for _, mapping := range d.Mappings() {
		hints[mapping.Service] = mapping.MethodHints
	}

	pipeline := &invocation.Pipeline{
		Name:        fmt.Sprintf("%s-%s", intent, detection.Candidates[0].Service),
		Description: fmt.Sprintf("suggested from: %s", text),
	}
	for _, candidate := range detection.Candidates {
		if candidate.Band == BandLow && len(pipeline.Steps) > 0 {
			continue
		}
		method := "call"
		if hint, ok := hints[candidate.Service][intent]; ok && hint != "" {
			method = hint
		}
		pipeline.Steps = append(pipeline.Steps, &invocation.Step{
			Name:    fmt.Sprintf("%s-%s", candidate.Service, intent),
			Service: "connector",
			Method:  "call",
			Input: map[string]interface{}{
				"service": candidate.Service,
				"method":  method,
			},
		})
	}
	return pipeline
}
