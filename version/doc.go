// Package version provides build-time version information for the
// cursorpage binary.
//
// Set version information during build with ldflags:
//
//	go build -ldflags "\
//	  -X github.com/ncobase/cursorpage/version.Version=1.2.3 \
//	  -X github.com/ncobase/cursorpage/version.Branch=main \
//	  -X github.com/ncobase/cursorpage/version.Revision=abc123 \
//	  -X 'github.com/ncobase/cursorpage/version.BuiltAt=$(date)'" ./cmd/cursorpage
//
// Values left unset are taken from the VCS stamp the Go toolchain embeds
// into the binary, when there is one:
//
//	info := version.GetVersionInfo()
//	fmt.Println(info)
package version
