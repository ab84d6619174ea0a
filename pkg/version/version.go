package version

// Version is stamped at link time, e.g.
// go build -ldflags "-X github.com/labworks/seriesdesk/pkg/version.Version=1.0.0".
var Version = "dev"
