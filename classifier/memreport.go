package classifier

import (
	"fmt"

	"rvh/utils"
)

// ByteSize estimates the resident size of the bank in bytes, rule
// payloads excluded.
func (c *Classifier) ByteSize() int {
	const iradixEntryEstimate = 64 // node + key + entry per live rule

	size := 24 + len(c.tables)*8
	for _, t := range c.tables {
		size += t.ByteSize()
	}
	size += c.dir.size() * iradixEntryEstimate
	return size
}

// MemReport returns a hierarchical memory report with one child per
// table, in bank order.
func (c *Classifier) MemReport() utils.MemReport {
	children := make([]utils.MemReport, 0, len(c.tables)+1)
	for i, t := range c.tables {
		children = append(children, utils.MemReport{
			Name:       fmt.Sprintf("rvht[%d]", i),
			TotalBytes: t.ByteSize(),
		})
	}
	children = append(children, utils.MemReport{
		Name:       "directory",
		TotalBytes: c.dir.size() * 64,
	})

	return utils.MemReport{
		Name:       "classifier",
		TotalBytes: c.ByteSize(),
		Children:   children,
	}
}
