package utility

// StringSlicesEqual compares two string slices for equality, treating nil
// and empty slices as equal.
func StringSlicesEqual(first, second []string) bool {
	if len(first) != len(second) {
		return false
	}
	for i, value := range first {
		if second[i] != value {
			return false
		}
	}
	return true
}

// StringMapsEqual compares two string maps for equality, treating nil and
// empty maps as equal.
func StringMapsEqual(first, second map[string]string) bool {
	if len(first) != len(second) {
		return false
	}
	for k, v := range first {
		if other, ok := second[k]; !ok || other != v {
			return false
		}
	}
	return true
}
