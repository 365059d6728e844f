package codec

// Domain names on the wire are encoded label-by-label per RFC 1035 §3.1
// only; §4.1.4 message compression is forbidden in DHCPv6 options.

const maxLabelLength = 63
const maxNameLength = 255

func isAlphanumericLabelByte(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// DecodeName parses a single uncompressed domain name starting at the
// beginning of b, returning the name (without the trailing dot) and the
// number of bytes consumed, including the terminating zero-length label.
func DecodeName(b []byte) (string, int, error) {
	var labels []string
	var total int

	for {
		if len(b) == 0 {
			return "", 0, &UnterminatedNameError{}
		}
		n := int(b[0])
		b = b[1:]
		total++

		if n == 0 {
			break
		}
		if n > maxLabelLength {
			return "", 0, &BadLabelError{Reason: "label exceeds 63 octets"}
		}
		if len(b) < n {
			return "", 0, &LengthOverflowError{Declared: n, Remaining: len(b)}
		}
		label := b[:n]
		for _, c := range label {
			if !isAlphanumericLabelByte(c) {
				return "", 0, &BadLabelError{Reason: "non-alphanumeric label byte"}
			}
		}
		labels = append(labels, string(label))
		b = b[n:]
		total += n
	}

	name := joinLabels(labels)
	if len(name) > maxNameLength {
		return "", 0, &BadLabelError{Reason: "name exceeds 255 octets"}
	}
	return name, total, nil
}

func joinLabels(labels []string) string {
	out := ""
	for i, l := range labels {
		if i > 0 {
			out += "."
		}
		out += l
	}
	return out
}

// EncodeName serializes name into its uncompressed wire form, label by
// label, terminated by a zero-length label.
func EncodeName(name string) ([]byte, error) {
	if name == "" {
		return []byte{0}, nil
	}

	var out []byte
	start := 0
	for i := 0; i <= len(name); i++ {
		if i == len(name) || name[i] == '.' {
			label := name[start:i]
			if len(label) == 0 || len(label) > maxLabelLength {
				return nil, &BadLabelError{Reason: "label length out of range"}
			}
			for j := 0; j < len(label); j++ {
				if !isAlphanumericLabelByte(label[j]) {
					return nil, &BadLabelError{Reason: "non-alphanumeric label byte"}
				}
			}
			out = append(out, byte(len(label)))
			out = append(out, label...)
			start = i + 1
		}
	}
	out = append(out, 0)
	if len(out) > maxNameLength+1 {
		return nil, &BadLabelError{Reason: "name exceeds 255 octets"}
	}
	return out, nil
}

// DecodeNameList parses a concatenated sequence of uncompressed domain
// names filling all of b, as used by OptionDomainSearchList and similar
// options.
func DecodeNameList(b []byte) ([]string, error) {
	var names []string
	for len(b) > 0 {
		name, n, err := DecodeName(b)
		if err != nil {
			return nil, err
		}
		names = append(names, name)
		b = b[n:]
	}
	return names, nil
}

// EncodeNameList serializes a list of domain names back-to-back.
func EncodeNameList(names []string) ([]byte, error) {
	var out []byte
	for _, n := range names {
		enc, err := EncodeName(n)
		if err != nil {
			return nil, err
		}
		out = append(out, enc...)
	}
	return out, nil
}
