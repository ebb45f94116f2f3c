/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package main

import "github.com/jacquelinekay/rttest/cmd"

func main() {
	cmd.Execute()
}
