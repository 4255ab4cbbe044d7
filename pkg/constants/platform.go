package constants

import "runtime"

// PlatformConfig holds platform-specific candidate paths for the external
// tools the backends shell out to.
type PlatformConfig struct {
	TesseractPaths []string
	NougatPaths    []string
}

// GetPlatformConfig returns platform-specific tool path candidates. The
// first candidate that resolves on PATH (or exists on disk) wins.
func GetPlatformConfig() *PlatformConfig {
	switch runtime.GOOS {
	case "windows":
		return &PlatformConfig{
			TesseractPaths: []string{
				"tesseract.exe",
				"C:\\Program Files\\Tesseract-OCR\\tesseract.exe",
				"C:\\Program Files (x86)\\Tesseract-OCR\\tesseract.exe",
			},
			NougatPaths: []string{
				"nougat.exe",
				"nougat",
			},
		}
	case "darwin":
		return &PlatformConfig{
			TesseractPaths: []string{
				"tesseract",
				"/opt/homebrew/bin/tesseract",
				"/usr/local/bin/tesseract",
			},
			NougatPaths: []string{
				"nougat",
				"/opt/homebrew/bin/nougat",
				"/usr/local/bin/nougat",
			},
		}
	default:
		return &PlatformConfig{
			TesseractPaths: []string{
				"tesseract",
				"/usr/bin/tesseract",
				"/usr/local/bin/tesseract",
			},
			NougatPaths: []string{
				"nougat",
				"/usr/local/bin/nougat",
			},
		}
	}
}
