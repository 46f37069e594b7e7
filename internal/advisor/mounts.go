package advisor

import (
	"sort"
	"strings"

	"github.com/samber/lo"

	"stack-advisor/internal/model"
)

var (
	excludedMountpoints = []string{"/", "/home", "/etc/resolv.conf", "/etc/hosts", "/etc/hostname", "/tmp"}
	excludedMountPrefix = []string{"/boot", "/mnt"}
	excludedFSTypes     = []string{"devtmpfs", "tmpfs", "vboxsf", "CDFS"}
)

// PreferredMountPoints ranks the usable data mounts of a host by free space,
// largest first, and always ends with "/".
func PreferredMountPoints(host *model.Host) []string {
	if host == nil {
		return []string{"/"}
	}

	candidates := lo.Filter(host.DiskInfo, func(d model.DiskInfo, _ int) bool {
		if lo.Contains(excludedMountpoints, d.Mountpoint) {
			return false
		}
		if lo.SomeBy(excludedMountPrefix, func(p string) bool { return strings.HasPrefix(d.Mountpoint, p) }) {
			return false
		}
		if lo.Contains(excludedFSTypes, d.Type) {
			return false
		}
		return d.Available != 0
	})

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Available > candidates[j].Available
	})

	mounts := lo.Map(candidates, func(d model.DiskInfo, _ int) string { return d.Mountpoint })
	return append(mounts, "/")
}

// mountPointForDir returns the mount point that holds dir, picking the most
// specific match. Returns "" when nothing matches.
func mountPointForDir(dir string, mountPoints []string) string {
	dir = strings.ToLower(strings.TrimSpace(strings.Replace(dir, "file://", "", 1)))
	if dir == "" {
		return ""
	}

	best := ""
	found := false
	for _, mp := range mountPoints {
		if !strings.HasPrefix(dir, mp) {
			continue
		}
		if !found || strings.Count(best, "/") < strings.Count(withTrailingSlash(mp), "/") {
			best = mp
			found = true
		}
	}
	return best
}

func withTrailingSlash(p string) string {
	if strings.HasSuffix(p, "/") {
		return p
	}
	return p + "/"
}
