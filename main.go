package main

import "github.com/yfmeii/media-scraper-web/cmd"

func main() {
	cmd.Execute()
}
