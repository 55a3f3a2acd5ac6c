package main

import "github.com/Senpai-Sama7/Astro-sub000/cmd"

func main() {
	cmd.Execute()
}
