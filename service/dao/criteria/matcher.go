package criteria

import (
	"github.com/atomhq/atom/service/dao"
)

// Match evaluates listing parameters against entity attributes. Attributes
// maps a parameter name (e.g. "State", "Service", "RunID") to the entity's
// value; a listing matches when every supplied parameter is satisfied.
func Match(attributes map[string]string, parameters []*dao.Parameter) bool {
	for _, parameter := range parameters {
		actual, ok := attributes[parameter.Name]
		if !ok {
			continue
		}
		switch expect := parameter.Value.(type) {
		case string:
			if actual != expect {
				return false
			}
		case []string:
			matched := false
			for _, candidate := range expect {
				if actual == candidate {
					matched = true
					break
				}
			}
			if !matched {
				return false
			}
		}
	}
	return true
}
