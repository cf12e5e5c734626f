package project

// Options configures Materialize.
type Options struct {
	Dir            string
	Manifest       ManifestOptions
	ReadmeTemplate string
	ReadmeTarget   string
}

// Report lists the problems Materialize ran into. None of them are fatal.
type Report struct {
	ManifestWritten bool
	ReadmePromoted  bool
	Problems        []error
}

// Materialize writes the manifest and promotes the readme. Both operations
// are attempted even if the first fails.
func Materialize(opts Options) *Report {
	report := &Report{}

	if err := WriteManifest(opts.Dir, NewManifest(opts.Manifest)); err != nil {
		report.Problems = append(report.Problems, err)
	} else {
		report.ManifestWritten = true
	}

	if err := PromoteReadme(opts.Dir, opts.ReadmeTemplate, opts.ReadmeTarget); err != nil {
		report.Problems = append(report.Problems, err)
	} else {
		report.ReadmePromoted = true
	}

	return report
}
