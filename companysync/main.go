package main

import "github.com/natserract/zohosync/companysync/cmd"

func main() {
	cmd.Execute()
}
