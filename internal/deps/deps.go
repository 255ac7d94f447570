package deps

// Requirement defines an external dependency lyricmux relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// Defaults lists the external binaries a batch run needs. Binary names come
// from configuration so packaged installs can point at absolute paths.
func Defaults(ffmpegBinary, ffprobeBinary string) []Requirement {
	return []Requirement{
		{Name: "FFmpeg", Command: ffmpegBinary, Description: "Muxes lyrics and cover art into audio containers"},
		{Name: "FFprobe", Command: ffprobeBinary, Description: "Verifies staged outputs before replacement"},
	}
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		status := ResolveTool(req.Name, req.Command, req.Description)
		status.Optional = req.Optional
		results = append(results, status)
	}
	return results
}
