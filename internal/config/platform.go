package config

import "runtime"

func defaultApps() map[string]AppConfig {
	switch runtime.GOOS {
	case "windows":
		return map[string]AppConfig{
			"notepad": {
				Paths:       []string{`C:\Windows\System32\notepad.exe`},
				ProcessName: "notepad.exe",
			},
			"browser": {
				Paths: []string{
					`C:\Program Files\Google\Chrome\Application\chrome.exe`,
					`C:\Program Files (x86)\Google\Chrome\Application\chrome.exe`,
				},
				ProcessName: "chrome.exe",
			},
			"calculator": {
				Paths:       []string{`C:\Windows\System32\calc.exe`},
				ProcessName: "CalculatorApp.exe",
			},
		}
	case "darwin":
		return map[string]AppConfig{
			"notepad": {
				Paths:       []string{"/System/Applications/TextEdit.app/Contents/MacOS/TextEdit"},
				ProcessName: "TextEdit",
			},
			"browser": {
				Paths: []string{
					"/Applications/Google Chrome.app/Contents/MacOS/Google Chrome",
					"/Applications/Safari.app/Contents/MacOS/Safari",
				},
				ProcessName: "Google Chrome",
			},
			"calculator": {
				Paths:       []string{"/System/Applications/Calculator.app/Contents/MacOS/Calculator"},
				ProcessName: "Calculator",
			},
		}
	default:
		return map[string]AppConfig{
			"notepad": {
				Paths:       []string{"gedit", "mousepad"},
				ProcessName: "gedit",
			},
			"browser": {
				Paths:       []string{"google-chrome", "firefox"},
				ProcessName: "chrome",
			},
			"calculator": {
				Paths:       []string{"gnome-calculator"},
				ProcessName: "gnome-calculator",
			},
		}
	}
}

func defaultTerminateCommand() []string {
	if runtime.GOOS == "windows" {
		return []string{"taskkill", "/F", "/IM"}
	}
	return []string{"pkill", "-9", "-x"}
}
