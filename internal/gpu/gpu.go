// Package gpu detects the display controller vendor used to pick a
// hardware video encoder.
package gpu

import (
	"bufio"
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
)

// Vendor names as offered to the user.
const (
	VendorNVIDIA = "nvidia"
	VendorAMD    = "amd"
)

const (
	pciVendorNVIDIA = "0x10de"
	pciVendorAMD    = "0x1002"
	// PCI class 0x03xxxx is a display controller.
	pciClassDisplay = "0x03"
)

// DefaultPCIRoot is the sysfs directory of PCI devices.
const DefaultPCIRoot = "/sys/bus/pci/devices"

// Detector finds the GPU vendor. The zero value reads sysfs and falls back
// to lspci.
type Detector struct {
	PCIRoot string
	Lspci   func(ctx context.Context) ([]byte, error)
}

// Vendor returns the first display controller vendor that is nvidia or amd,
// or "" when none is found.
func (d Detector) Vendor(ctx context.Context) string {
	root := d.PCIRoot
	if root == "" {
		root = DefaultPCIRoot
	}
	if vendor := fromSysfs(root); vendor != "" {
		return vendor
	}
	lspci := d.Lspci
	if lspci == nil {
		lspci = runLspci
	}
	out, err := lspci(ctx)
	if err != nil {
		return ""
	}
	return fromLspci(out)
}

func fromSysfs(root string) string {
	devices, err := os.ReadDir(root)
	if err != nil {
		return ""
	}
	names := make([]string, 0, len(devices))
	for _, dev := range devices {
		names = append(names, dev.Name())
	}
	sort.Strings(names)
	for _, name := range names {
		class := readTrimmed(filepath.Join(root, name, "class"))
		if !strings.HasPrefix(class, pciClassDisplay) {
			continue
		}
		switch readTrimmed(filepath.Join(root, name, "vendor")) {
		case pciVendorNVIDIA:
			return VendorNVIDIA
		case pciVendorAMD:
			return VendorAMD
		}
	}
	return ""
}

func readTrimmed(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(string(data)))
}

func runLspci(ctx context.Context) ([]byte, error) {
	return exec.CommandContext(ctx, "lspci").Output()
}

func fromLspci(out []byte) string {
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		line := strings.ToLower(scanner.Text())
		if !strings.Contains(line, "vga compatible controller") &&
			!strings.Contains(line, "3d controller") &&
			!strings.Contains(line, "display controller") {
			continue
		}
		switch {
		case strings.Contains(line, "nvidia"):
			return VendorNVIDIA
		case strings.Contains(line, "amd"), strings.Contains(line, "ati technologies"):
			return VendorAMD
		}
	}
	return ""
}
