//go:build !windows

package locate

func readRegistry(string) string {
	return ""
}
