//go:build windows

package locate

import "golang.org/x/sys/windows/registry"

func readRegistry(key string) string {
	k, err := registry.OpenKey(registry.LOCAL_MACHINE, key, registry.QUERY_VALUE)
	if err != nil {
		return ""
	}
	defer k.Close()

	v, _, err := k.GetStringValue("")
	if err != nil {
		return ""
	}
	return v
}
