package exec

// Input represents command executor configuration
type Input struct {
	Host         *Host             `json:"host,omitempty" description:"host to execute command on" internal:"true"`
	Directory    string            `json:"directory,omitempty" description:"directory where commands start"`
	Env          map[string]string `json:"env,omitempty" description:"environment variables to be set before command runs"`
	Commands     []string          `json:"commands,omitempty" description:"commands to execute on the target system"`
	TimeoutMs    int               `json:"timeoutMs,omitempty" yaml:"timeoutMs,omitempty" description:"max wait time before timing out command"`
	AbortOnError *bool             `json:"abortOnError,omitempty" description:"stop on the first command with a non zero status"`
}

func (i *Input) Init() {
	if i.Host == nil {
		i.Host = &Host{}
	}
	if i.Host.URL == "" {
		i.Host.URL = "bash://localhost/"
	}
}
