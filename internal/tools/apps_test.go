package tools

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mvaldes/mando/internal/tool"
	"github.com/mvaldes/mando/internal/tool/tooltest"
)

func testApps(t *testing.T) (map[string]AllowedApp, string) {
	t.Helper()
	// "Launching" touch as an app leaves observable evidence without
	// depending on a desktop environment.
	marker := filepath.Join(t.TempDir(), "lanzada")
	apps := map[string]AllowedApp{
		"marcador": {Command: []string{"touch", marker}, Description: "App de prueba"},
	}
	return apps, marker
}

func TestOpenApp_Whitelisted(t *testing.T) {
	t.Parallel()

	apps, marker := testApps(t)
	env := openEnv(t)

	res := mustOK(t, NewOpenApp(apps).Execute(context.Background(), tool.Args{"app_key": "marcador"}, env))
	if res["opened"] != "marcador" {
		t.Fatalf("opened = %v", res["opened"])
	}

	// The child runs detached; poll briefly for its side effect.
	deadline := time.Now().Add(2 * time.Second)
	for {
		if _, err := os.Stat(marker); err == nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("spawned command never ran")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestOpenApp_UnknownKey(t *testing.T) {
	t.Parallel()

	apps, _ := testApps(t)
	env := openEnv(t)

	res := mustFail(t, NewOpenApp(apps).Execute(context.Background(), tool.Args{"app_key": "shell"}, env))
	if !strings.Contains(res.ErrorMsg(), "marcador") {
		t.Fatalf("error must list allowed keys, got %q", res.ErrorMsg())
	}
}

func TestOpenApp_ApprovalDenied(t *testing.T) {
	t.Parallel()

	apps, marker := testApps(t)
	env := gatedEnv(t, &tooltest.ScriptedApprover{Answers: []bool{false}})

	mustFail(t, NewOpenApp(apps).Execute(context.Background(), tool.Args{"app_key": "marcador"}, env))

	time.Sleep(50 * time.Millisecond)
	if _, err := os.Stat(marker); !os.IsNotExist(err) {
		t.Fatal("denied launch must not spawn the command")
	}
}

func TestOpenApp_Keys(t *testing.T) {
	t.Parallel()

	apps := map[string]AllowedApp{
		"b": {Command: []string{"true"}},
		"a": {Command: []string{"true"}},
	}
	keys := NewOpenApp(apps).Keys()
	if len(keys) != 2 || keys[0] != "a" || keys[1] != "b" {
		t.Fatalf("Keys = %v", keys)
	}
}

func TestRegisterAll(t *testing.T) {
	t.Parallel()

	registry := tool.NewRegistry()
	if err := RegisterAll(registry, nil); err != nil {
		t.Fatalf("RegisterAll: %v", err)
	}

	want := []string{
		"create_project_folder", "delete_file", "list_files", "open_app",
		"organize_folder", "read_file", "rename_file", "search_text", "write_file",
	}
	names := registry.Names()
	if len(names) != len(want) {
		t.Fatalf("Names = %v", names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("Names = %v, want %v", names, want)
		}
	}
}
