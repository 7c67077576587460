package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/CircuitSutra/VeeR-ISS/pma"
)

var (
	pmaMemSize  uint64
	pmaPageSize uint64
	pmaRegions  []string
	pmaFrom     uint64
	pmaTo       uint64
)

var pmaCmd = &cobra.Command{
	Use:   "pma",
	Short: "Apply attribute regions to a PMA store and dump coverage for a range.",
	RunE:  runPMA,
}

func init() {
	rootCmd.AddCommand(pmaCmd)

	pmaCmd.Flags().Uint64Var(&pmaMemSize, "mem-size", 1<<32, "backing memory size in bytes")
	pmaCmd.Flags().Uint64Var(&pmaPageSize, "page-size", 4096, "PMA page size in bytes")
	pmaCmd.Flags().StringArrayVar(&pmaRegions, "region", nil,
		"a0:a1:attrib region to set, e.g. 0x1000:0x1fff:read,write (repeatable)")
	pmaCmd.Flags().Uint64Var(&pmaFrom, "from", 0, "start of the range to dump")
	pmaCmd.Flags().Uint64Var(&pmaTo, "to", 0x1000, "end of the range to dump (word-aligned step)")
}

func runPMA(_ *cobra.Command, _ []string) error {
	store := pma.NewStore(pmaMemSize, pmaPageSize)

	for _, r := range pmaRegions {
		a0, a1, attrib, err := parseRegion(r)
		if err != nil {
			return err
		}
		store.SetAttribute(a0, a1, attrib)
	}

	for addr := pmaFrom; addr <= pmaTo; addr += 4 {
		p := store.GetPma(addr)
		fmt.Printf("0x%08x: %s\n", addr, describePma(p))
	}

	return nil
}

func parseRegion(spec string) (a0, a1 uint64, attrib pma.Attrib, err error) {
	parts := strings.Split(spec, ":")
	if len(parts) != 3 {
		return 0, 0, 0, fmt.Errorf("rvinspect: malformed region %q, want a0:a1:attrib", spec)
	}

	a0, err = parseHexOrDec(parts[0])
	if err != nil {
		return 0, 0, 0, err
	}
	a1, err = parseHexOrDec(parts[1])
	if err != nil {
		return 0, 0, 0, err
	}

	attrib, err = parseAttribList(parts[2])
	if err != nil {
		return 0, 0, 0, err
	}

	return a0, a1, attrib, nil
}

func parseAttribList(s string) (pma.Attrib, error) {
	var out pma.Attrib
	for _, name := range strings.Split(s, ",") {
		switch name {
		case "exec":
			out |= pma.Exec
		case "read":
			out |= pma.Read
		case "write":
			out |= pma.Write
		case "idempotent":
			out |= pma.Idempotent
		case "atomic":
			out |= pma.Atomic
		case "iccm":
			out |= pma.Iccm
		case "dccm":
			out |= pma.Dccm
		case "memmapped":
			out |= pma.MemMapped
		case "cacheable":
			out |= pma.Cacheable
		case "aligned":
			out |= pma.Aligned
		default:
			return 0, fmt.Errorf("rvinspect: unknown attribute %q", name)
		}
	}
	return out, nil
}

func describePma(p pma.Pma) string {
	names := []struct {
		has  bool
		name string
	}{
		{p.IsExec(), "exec"},
		{p.IsRead(), "read"},
		{p.IsWrite(), "write"},
		{p.IsIdempotent(), "idempotent"},
		{p.IsAtomic(), "atomic"},
		{p.IsIccm(), "iccm"},
		{p.IsDccm(), "dccm"},
		{p.IsMemMappedReg(), "memmapped"},
		{p.IsCacheable(), "cacheable"},
		{p.IsAligned(), "aligned"},
	}

	out := ""
	for _, n := range names {
		if !n.has {
			continue
		}
		if out != "" {
			out += ","
		}
		out += n.name
	}
	if out == "" {
		return "none"
	}
	return out
}

func parseHexOrDec(s string) (uint64, error) {
	return strconv.ParseUint(strings.TrimPrefix(s, "0x"), hexOrDecBase(s), 64)
}

func hexOrDecBase(s string) int {
	if strings.HasPrefix(s, "0x") {
		return 16
	}
	return 10
}
