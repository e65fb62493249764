package modules

import (
	"github.com/starrbot/starr/modules/plugins"
)

var (
	pluginCache         map[string]*Plugin
	extendedPluginCache map[string]*ExtendedPlugin

	PluginList = []Plugin{
		&plugins.Ping{},
		&plugins.Tags{},
		&plugins.Mod{},
		&plugins.Prefix{},
	}

	PluginExtendedList = []ExtendedPlugin{
		&plugins.Starboard{},
	}
)
