package main

import (
	. "github.com/saylorsolutions/modmake"
)

const (
	wsauthVersion = "0.3.0"
)

func main() {
	b := NewBuild()
	b.Generate().DependsOnRunner("tidy", "", Go().ModTidy())

	wsauth := NewAppBuild("wsauth", "cmd/wsauth", wsauthVersion)
	wsauth.Build(func(gb *GoBuild) {
		gb.
			StripDebugSymbols().
			SetVariable("main", "version", wsauthVersion).
			CgoEnabled(false)
	})
	wsauth.Variant("windows", "amd64")
	wsauth.Variant("linux", "amd64")
	wsauth.Variant("linux", "arm64")
	wsauth.Variant("darwin", "arm64")
	b.ImportApp(wsauth)

	b.Execute()
}
