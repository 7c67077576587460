package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/CircuitSutra/VeeR-ISS/memsim"
	"github.com/CircuitSutra/VeeR-ISS/vm"
)

var (
	walkImage  string
	walkMode   string
	walkRoot   uint64
	walkASID   uint32
	walkVA     uint64
	walkPriv   string
	walkIntent string
	walkTLBCap int
	walkPageSz uint64
)

var walkCmd = &cobra.Command{
	Use:   "walk",
	Short: "Translate a virtual address against a page table in a memory image.",
	RunE:  runWalk,
}

func init() {
	rootCmd.AddCommand(walkCmd)

	walkCmd.Flags().StringVar(&walkImage, "image", envOr("RVINSPECT_IMAGE", ""), "path to a flat physical-memory image")
	walkCmd.Flags().StringVar(&walkMode, "mode", envOr("RVINSPECT_MODE", "sv39"), "bare|sv32|sv39|sv48")
	walkCmd.Flags().Uint64Var(&walkRoot, "root", envUint64Or("RVINSPECT_ROOT", 0), "page-table root, in page numbers")
	walkCmd.Flags().Uint32Var(&walkASID, "asid", uint32(envUint64Or("RVINSPECT_ASID", 0)), "address-space id")
	walkCmd.Flags().Uint64Var(&walkVA, "va", 0, "virtual address to translate")
	walkCmd.Flags().StringVar(&walkPriv, "priv", "supervisor", "user|supervisor|machine")
	walkCmd.Flags().StringVar(&walkIntent, "intent", "r", "access intent: r|w|x")
	walkCmd.Flags().IntVar(&walkTLBCap, "tlb-capacity", envIntOr("RVINSPECT_TLB_CAPACITY", 64), "software TLB capacity")
	walkCmd.Flags().Uint64Var(&walkPageSz, "page-size", 4096, "translator page size in bytes")

	_ = walkCmd.MarkFlagRequired("image")
}

func runWalk(_ *cobra.Command, _ []string) error {
	data, err := os.ReadFile(walkImage)
	if err != nil {
		return fmt.Errorf("rvinspect: reading image: %w", err)
	}

	mem := memsim.New(uint64(len(data)))
	if !mem.Write(0, 0, data) {
		return fmt.Errorf("rvinspect: loading image into memory failed")
	}

	mode, err := parseMode(walkMode)
	if err != nil {
		return err
	}

	tr := vm.New(mem, 0, walkTLBCap)
	tr.SetMode(mode)
	tr.SetPageTableRoot(walkRoot)
	tr.SetAddressSpace(walkASID)

	if mode != vm.Bare && walkPageSz != 4096 {
		if !tr.SetPageSize(walkPageSz) {
			return fmt.Errorf("rvinspect: page size %d invalid for mode %s", walkPageSz, walkMode)
		}
	}

	priv, err := parsePriv(walkPriv)
	if err != nil {
		return err
	}

	read, write, exec, err := parseIntent(walkIntent)
	if err != nil {
		return err
	}

	pa, cause := tr.Translate(walkVA, priv, read, write, exec)
	if cause != vm.None {
		fmt.Printf("fault: %s\n", cause)
		return nil
	}

	fmt.Printf("0x%x -> 0x%x\n", walkVA, pa)
	return nil
}

func parseMode(s string) (vm.Mode, error) {
	switch s {
	case "bare":
		return vm.Bare, nil
	case "sv32":
		return vm.Sv32, nil
	case "sv39":
		return vm.Sv39, nil
	case "sv48":
		return vm.Sv48, nil
	default:
		return vm.Bare, fmt.Errorf("rvinspect: unknown mode %q", s)
	}
}

func parsePriv(s string) (vm.Privilege, error) {
	switch s {
	case "user":
		return vm.User, nil
	case "supervisor":
		return vm.Supervisor, nil
	case "machine":
		return vm.Machine, nil
	default:
		return vm.User, fmt.Errorf("rvinspect: unknown privilege %q", s)
	}
}

func parseIntent(s string) (read, write, exec bool, err error) {
	switch s {
	case "r":
		return true, false, false, nil
	case "w":
		return false, true, false, nil
	case "x":
		return false, false, true, nil
	default:
		return false, false, false, fmt.Errorf("rvinspect: unknown intent %q", s)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envUint64Or(key string, fallback uint64) uint64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseUint(v, 0, 64)
	if err != nil {
		return fallback
	}
	return n
}

func envIntOr(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
