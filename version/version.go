package version

var (
	// GitCommit is the current HEAD set using ldflags.
	GitCommit string

	// Version is the built softwares version.
	Version = IBCLightSemVer
)

func init() {
	if GitCommit != "" {
		Version += "-" + GitCommit
	}
}

const (
	// IBCLightSemVer is the current version of ibclight.
	// It's the Semantic Version of the software.
	IBCLightSemVer = "0.1.0"

	// ICS23SemVer is the version of the ICS23 proof format verified.
	ICS23SemVer = "0.10.0"
)

// Protocol is used for implementation agnostic versioning.
type Protocol uint64

// Uint64 returns the Protocol version as a uint64.
func (p Protocol) Uint64() uint64 {
	return uint64(p)
}

// StoreProtocol versions the encoding of stored client states, consensus
// states and the height index.
var StoreProtocol Protocol = 1
