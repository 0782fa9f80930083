package main

import "github.com/kamilpajak/leafcheck/cmd/leafcheck"

func main() {
	leafcheck.Execute()
}
