package fsnav

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"golang.org/x/sys/unix"
)

// DefaultMountTable is read to enumerate volumes on Linux.
const DefaultMountTable = "/proc/self/mounts"

// Volume is a mounted filesystem the user can browse.
type Volume struct {
	Path   string
	Device string
	FSType string
	Total  uint64
	Free   uint64
}

// Browsable filesystem types. Pseudo filesystems (proc, sysfs, tmpfs,
// overlay, squashfs snaps) are never offered.
var browsableFS = map[string]bool{
	"ext2": true, "ext3": true, "ext4": true,
	"xfs": true, "btrfs": true, "zfs": true, "f2fs": true,
	"vfat": true, "exfat": true, "ntfs": true, "ntfs3": true, "fuseblk": true,
	"hfsplus": true, "nfs": true, "nfs4": true, "cifs": true, "smb3": true,
}

// Volumes returns browsable mounts sorted by path.
func (o OS) Volumes() ([]Volume, error) {
	table := o.MountTable
	if table == "" {
		table = DefaultMountTable
	}
	f, err := os.Open(table)
	if err != nil {
		return nil, fmt.Errorf("open mount table: %w", err)
	}
	defer f.Close()

	volumes, err := parseMounts(f)
	if err != nil {
		return nil, err
	}
	for i := range volumes {
		var st unix.Statfs_t
		if err := unix.Statfs(volumes[i].Path, &st); err != nil {
			continue
		}
		volumes[i].Total = st.Blocks * uint64(st.Bsize)
		volumes[i].Free = st.Bavail * uint64(st.Bsize)
	}
	return volumes, nil
}

func parseMounts(r io.Reader) ([]Volume, error) {
	seen := make(map[string]bool)
	var volumes []Volume
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 3 {
			continue
		}
		device, mountPoint, fsType := fields[0], unescapeMount(fields[1]), fields[2]
		if !browsableFS[fsType] || seen[mountPoint] {
			continue
		}
		if strings.HasPrefix(mountPoint, "/boot") {
			continue
		}
		seen[mountPoint] = true
		volumes = append(volumes, Volume{Path: mountPoint, Device: device, FSType: fsType})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read mount table: %w", err)
	}
	if !seen["/"] {
		volumes = append(volumes, Volume{Path: "/", Device: "rootfs"})
	}
	sort.Slice(volumes, func(i, j int) bool { return volumes[i].Path < volumes[j].Path })
	return volumes, nil
}

// unescapeMount decodes the octal escapes (\040 for space) the kernel uses
// in the mount table.
func unescapeMount(value string) string {
	if !strings.Contains(value, `\`) {
		return value
	}
	var b strings.Builder
	for i := 0; i < len(value); i++ {
		if value[i] == '\\' && i+4 <= len(value) {
			if n, err := strconv.ParseUint(value[i+1:i+4], 8, 8); err == nil {
				b.WriteByte(byte(n))
				i += 3
				continue
			}
		}
		b.WriteByte(value[i])
	}
	return b.String()
}
