package weave

// Version and BuildDate are reported by `weave version`. BuildDate is meant
// to be overridden at link time with -ldflags "-X ...BuildDate=...".
var (
	Version   = "0.1.0"
	BuildDate = "dev"
)
