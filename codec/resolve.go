package codec

// ResolveFormat returns the concrete output format for a request.
//
// An explicit format always wins. For [FormatAuto] the precedence is:
//  1. the extension of filename,
//  2. the format sniffed from the content,
//  3. fallback.
//
// The result is never [FormatAuto].
func ResolveFormat(requested Format, filename string, sniffed Format, fallback Format) Format {
	if requested != "" && requested != FormatAuto {
		return requested
	}
	if f, ok := FormatFromFilename(filename); ok {
		return f
	}
	if sniffed != "" && sniffed != FormatAuto {
		return sniffed
	}
	if fallback == "" || fallback == FormatAuto {
		return FormatJPEG
	}
	return fallback
}
