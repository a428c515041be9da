package loader

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/nathoo/arenacore/config"
	"github.com/nathoo/arenacore/engine/state"
	lua "github.com/yuin/gopher-lua"
)

// collector accumulates Lua definitions during file execution.
type collector struct {
	arena    *lua.LTable
	quests   []rawDef
	items    []rawDef
	outcomes []rawDef
	messages []rawDef
	handlers []rawDef
	order    int
}

func (c *collector) nextSourceOrder() int {
	c.order++
	return c.order
}

// Load reads all .lua files from dir and compiles them into arena
// definitions. See LoadFS.
func Load(dir string, tuning config.Tuning) (*state.Defs, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("reading arena directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("reading arena directory %s: not a directory", dir)
	}
	return LoadFS(os.DirFS(dir), tuning)
}

// LoadFS reads all .lua files at the root of fsys, compiles them into arena
// definitions, validates them, and returns the immutable Defs. The Lua VM
// is discarded after loading.
func LoadFS(fsys fs.FS, tuning config.Tuning) (*state.Defs, error) {
	// Discover .lua files.
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("reading arena content: %w", err)
	}

	var luaFiles []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".lua") {
			luaFiles = append(luaFiles, e.Name())
		}
	}
	if len(luaFiles) == 0 {
		return nil, fmt.Errorf("no .lua files found")
	}

	// Sort: arena.lua first, rest alphabetical.
	luaFiles = sortedLuaFiles(luaFiles)

	// Create sandboxed VM.
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	defer L.Close()
	openSafeLibs(L)
	sandbox(L)

	// Register API.
	coll := &collector{}
	registerAPI(L, coll)

	// Execute each file.
	for _, f := range luaFiles {
		src, err := fs.ReadFile(fsys, f)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", f, err)
		}
		fn, err := L.Load(bytes.NewReader(src), f)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", f, err)
		}
		L.Push(fn)
		if err := L.PCall(0, lua.MultRet, nil); err != nil {
			return nil, fmt.Errorf("executing %s: %w", f, err)
		}
	}

	// Compile.
	defs, err := compile(coll, tuning)
	if err != nil {
		return nil, fmt.Errorf("compiling arena data: %w", err)
	}

	// Validate.
	if err := validate(defs); err != nil {
		return nil, err
	}

	return defs, nil
}

// openSafeLibs opens only the safe subset of Lua standard libraries.
func openSafeLibs(L *lua.LState) {
	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)
}

// sandbox removes globals that reach outside the VM or break determinism.
func sandbox(L *lua.LState) {
	dangerous := []string{
		"dofile", "loadfile", "load", "loadstring", "require",
		"rawset", "rawget", "rawequal",
		"collectgarbage",
	}
	for _, name := range dangerous {
		L.SetGlobal(name, lua.LNil)
	}

	// Catalog randomness belongs to the engine RNG.
	if tbl, ok := L.GetGlobal("math").(*lua.LTable); ok {
		tbl.RawSetString("random", lua.LNil)
		tbl.RawSetString("randomseed", lua.LNil)
	}
}

// sortedLuaFiles returns .lua files with arena.lua first and the rest
// sorted alphabetically.
func sortedLuaFiles(files []string) []string {
	var arenaFile string
	var others []string
	for _, f := range files {
		if f == "arena.lua" {
			arenaFile = f
		} else {
			others = append(others, f)
		}
	}
	sort.Strings(others)
	if arenaFile != "" {
		return append([]string{arenaFile}, others...)
	}
	return others
}
