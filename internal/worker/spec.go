package worker

type Operation string

const (
	OperationInstall   Operation = "install"
	OperationUninstall Operation = "uninstall"
)

func (o Operation) String() string {
	return string(o)
}

// Spec is everything needed to start one worker attempt.
type Spec struct {
	Operation Operation
	AppID     string
	ChannelID string
	// Args are the variant-specific trailing arguments, starting with the variant tag,
	// e.g. ["binary", url, "--hash", hash].
	Args []string
}

// Argv is the worker command line after the binary name. The worker binary parses
// this positionally, so the order is fixed:
//
//	install <appId> --pipe <channelId> binary <downloadUrl> --hash <base64Hash>
//	uninstall <appId> --pipe <channelId> binary
func (s Spec) Argv() []string {
	argv := []string{string(s.Operation), s.AppID, "--pipe", s.ChannelID}
	return append(argv, s.Args...)
}
