package app

import "syscall"

// diskUsage returns usage stats for the filesystem holding path, or nil on
// error (a texture cache that was never created, for instance).
func diskUsage(path string) map[string]any {
	if path == "" {
		return nil
	}
	var stat syscall.Statfs_t
	if err := syscall.Statfs(path, &stat); err != nil {
		return nil
	}
	total := stat.Blocks * uint64(stat.Bsize)
	free := stat.Bavail * uint64(stat.Bsize)
	return map[string]any{
		"path":            path,
		"total_bytes":     total,
		"used_bytes":      total - stat.Bfree*uint64(stat.Bsize),
		"available_bytes": free,
	}
}
