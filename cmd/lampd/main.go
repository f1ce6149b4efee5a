// lampd drives an RGB lamp: PCA9685 output, MQTT control, console, alarms
// and the animation engine.
package main

func main() {
	Execute()
}
