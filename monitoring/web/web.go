// Package web includes the static web pages for the monitoring tool.
package web

import (
	"embed"
	"io/fs"
	"log"
	"net/http"
	"os"
	"path"
	"runtime"
	"strings"
)

//go:embed dist/*
var staticAssets embed.FS

// DevModeEnv names the variable that makes GetAssets read the page from the
// source tree, so that it can be edited without rebuilding.
const DevModeEnv = "FLOWPACE_MONITOR_DEV"

// GetAssets returns the monitoring page and its assets.
func GetAssets() http.FileSystem {
	if !devMode() {
		return embedded()
	}

	_, self, _, ok := runtime.Caller(0)
	if !ok {
		log.Print("cannot locate the source tree, serving embedded page")
		return embedded()
	}

	dir := path.Join(path.Dir(self), "dist")
	log.Printf("monitor development mode, serving %s", dir)

	return http.Dir(dir)
}

func embedded() http.FileSystem {
	dist, err := fs.Sub(staticAssets, "dist")
	if err != nil {
		panic(err)
	}

	return http.FS(dist)
}

func devMode() bool {
	switch strings.ToLower(os.Getenv(DevModeEnv)) {
	case "true", "1", "yes":
		return true
	default:
		return false
	}
}
