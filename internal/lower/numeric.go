package lower

import (
	"strconv"
	"strings"

	"jlangc/internal/types"
)

var intSuffixes = []string{"u8", "u16", "u32", "u64", "i8", "i16", "i32", "i64"}

// parseIntLiteral parses an integer literal's raw lexeme per spec §6's
// "Literal number syntax": optional 0x/0o/0b radix prefix, `_`
// separators, and an optional type suffix. Absent a suffix the literal
// defaults to u32, widening to u64 only if the value does not fit u32.
// Range-checking happens here, against whichever type is ultimately
// chosen, rather than in the scanner, since only this stage knows the
// target width.
func parseIntLiteral(text string, reg *types.Registry) (uint64, *types.Type, bool) {
	// Hex/octal/binary digits never include 'u' or 'i', so a suffix match
	// against the raw lexeme is unambiguous regardless of radix.
	suffix := ""
	digits := text
	for _, s := range intSuffixes {
		if strings.HasSuffix(text, s) && len(text) > len(s) {
			suffix = s
			digits = strings.TrimSuffix(text, s)
			break
		}
	}

	radix := 10
	switch {
	case strings.HasPrefix(digits, "0x"), strings.HasPrefix(digits, "0X"):
		radix = 16
		digits = digits[2:]
	case strings.HasPrefix(digits, "0o"), strings.HasPrefix(digits, "0O"):
		radix = 8
		digits = digits[2:]
	case strings.HasPrefix(digits, "0b"), strings.HasPrefix(digits, "0B"):
		radix = 2
		digits = digits[2:]
	}
	digits = strings.ReplaceAll(digits, "_", "")
	if digits == "" {
		return 0, nil, false
	}

	val, err := strconv.ParseUint(digits, radix, 64)
	if err != nil {
		return 0, nil, false
	}

	return finishIntLiteral(val, suffix, reg)
}

func finishIntLiteral(val uint64, suffix string, reg *types.Registry) (uint64, *types.Type, bool) {
	if suffix == "" {
		if val <= uint64(^uint32(0)) {
			return val, reg.Int(types.Width32, false), true
		}
		return val, reg.Int(types.Width64, false), true
	}
	width := map[string]types.IntWidth{
		"u8": types.Width8, "u16": types.Width16, "u32": types.Width32, "u64": types.Width64,
		"i8": types.Width8, "i16": types.Width16, "i32": types.Width32, "i64": types.Width64,
	}[suffix]
	signed := strings.HasPrefix(suffix, "i")
	if !fitsWidth(val, width, signed) {
		return 0, nil, false
	}
	return val, reg.Int(width, signed), true
}

func fitsWidth(val uint64, width types.IntWidth, signed bool) bool {
	if width == 64 {
		if signed {
			return val <= 1<<63-1
		}
		return true
	}
	if signed {
		return val < uint64(1)<<(uint(width)-1)
	}
	return val < uint64(1)<<uint(width)
}

