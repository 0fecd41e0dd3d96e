package config

const (
	defaultInputFile     = "input.adif"
	defaultTemplateFile  = "template.svg"
	defaultOutputDir     = "output_files"
	defaultRasterBinary  = "inkscape"
	defaultRasterExt     = "png"
	defaultNoEmailFile   = "NOEMAIL.CSV"
	defaultWithEmailFile = "YESEMAIL.CSV"
	defaultAllFile       = "SUCCESS.CSV"
	defaultSummaryFile   = "summary.txt"
	defaultXLSXFile      = "manifests.xlsx"
	defaultEmailSubject  = "QSL card for {call}"
	defaultEmailBody     = "Hello {call},\n\nThank you for the contact. Your QSL card is attached.\n\n73"
	defaultEmailFromName = "QSL Manager"
	defaultStoragePrefix = "qsl"
	defaultNtfyTimeout   = 10
	defaultLogFormat     = "console"
	defaultLogLevel      = "info"
	defaultLogFile       = "debug.log"
)

// DefaultRasterArgs is the converter argument list used when none is configured.
func DefaultRasterArgs() []string {
	return []string{"{input}", "--export-filename={output}"}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			InputFile:    defaultInputFile,
			TemplateFile: defaultTemplateFile,
			OutputDir:    defaultOutputDir,
			StateDir:     defaultStateDir(),
		},
		Raster: Raster{
			Enabled:   true,
			Binary:    defaultRasterBinary,
			Args:      DefaultRasterArgs(),
			Extension: defaultRasterExt,
		},
		Address: Address{
			Enrich: true,
		},
		Manifest: Manifest{
			NoEmailFile:   defaultNoEmailFile,
			WithEmailFile: defaultWithEmailFile,
			AllFile:       defaultAllFile,
			SummaryFile:   defaultSummaryFile,
			XLSXFile:      defaultXLSXFile,
		},
		History: History{
			Enabled: true,
		},
		Email: Email{
			FromName: defaultEmailFromName,
			Subject:  defaultEmailSubject,
			Body:     defaultEmailBody,
		},
		Storage: Storage{
			Prefix: defaultStoragePrefix,
		},
		Notifications: Notifications{
			RequestTimeoutSeconds: defaultNtfyTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
			File:   defaultLogFile,
		},
	}
}
