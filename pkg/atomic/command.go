package atomic

import (
	"fmt"
	"strconv"
	"strings"
)

// Invocation describes a single Invoke-AtomicTest call.
type Invocation struct {
	Technique        string
	TestNumbers      []int
	CheckPrereqs     bool
	GetPrereqs       bool
	Cleanup          bool
	ShowDetails      bool
	ShowDetailsBrief bool
	AnyOS            bool
	Session          string
}

// Command renders the Invoke-AtomicTest command string passed to PowerShell.
// Flag order is fixed; -ShowDetails wins over -ShowDetailsBrief when both are
// set.
func (inv Invocation) Command() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Invoke-AtomicTest -AtomicTechnique %s", inv.Technique)

	if len(inv.TestNumbers) > 0 {
		nums := make([]string, len(inv.TestNumbers))
		for i, n := range inv.TestNumbers {
			nums[i] = strconv.Itoa(n)
		}
		fmt.Fprintf(&b, " -TestNumbers %s", strings.Join(nums, ","))
	}

	if inv.CheckPrereqs {
		b.WriteString(" -CheckPrereqs")
	}
	if inv.GetPrereqs {
		b.WriteString(" -GetPrereqs")
	}
	if inv.Cleanup {
		b.WriteString(" -Cleanup")
	}

	if inv.ShowDetails {
		b.WriteString(" -ShowDetails")
	} else if inv.ShowDetailsBrief {
		b.WriteString(" -ShowDetailsBrief")
	}

	if inv.AnyOS {
		b.WriteString(" -AnyOS")
	}

	if inv.Session != "" {
		// References a PSSession variable established out of band.
		fmt.Fprintf(&b, " -Session $%s", inv.Session)
	}

	return b.String()
}

// Args returns the argv handed to the PowerShell executable: the whole
// Invoke-AtomicTest string travels as a single -Command argument.
func (inv Invocation) Args() []string {
	return []string{"-Command", inv.Command()}
}

// listTechniquesCommand enumerates every technique the framework knows about.
const listTechniquesCommand = "Invoke-AtomicTest -ListTechniques"
