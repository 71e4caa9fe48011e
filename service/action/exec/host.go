package exec

// Host identifies where commands run.  The default is the local host; a
// remote URL switches the session to SSH.
type Host struct {
	URL         string `json:"url,omitempty" description:"host URL, e.g. bash://localhost/ or ssh://build01:22"`
	Credentials string `json:"credentials,omitempty" description:"secret resource with SSH credentials"`
}
