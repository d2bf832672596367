package app

import "syscall"

type diskStats struct {
	TotalBytes     uint64  `json:"total_bytes"`
	UsedBytes      uint64  `json:"used_bytes"`
	AvailableBytes uint64  `json:"available_bytes"`
	UsedPercent    float64 `json:"used_percent"`
}

// diskFullPercent marks the data volume unhealthy for catalog cache writes.
const diskFullPercent = 98

// diskUsage reports the filesystem holding path, or nil when it cannot be
// read. Available counts blocks usable by unprivileged writers.
func diskUsage(path string) *diskStats {
	var st syscall.Statfs_t
	if err := syscall.Statfs(path, &st); err != nil {
		return nil
	}
	bs := uint64(st.Bsize)
	d := &diskStats{
		TotalBytes:     st.Blocks * bs,
		AvailableBytes: st.Bavail * bs,
	}
	d.UsedBytes = d.TotalBytes - st.Bfree*bs
	if d.TotalBytes > 0 {
		d.UsedPercent = float64(d.UsedBytes) / float64(d.TotalBytes) * 100
	}
	return d
}
