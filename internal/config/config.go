package config

import (
	"bytes"
	"github.com/LoesterFranco/A-Z80/internal/log"
	"github.com/LoesterFranco/A-Z80/internal/z80"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v2"
	"os"
	"reflect"
	"strings"
)

const (
	defTerminalWidth  = 120
	defTerminalHeight = 50

	EnvVarPrefix = "Z80"

	// unset marks a power-on register the user did not override.
	unset = -1
)

var CLIConfig *Config
var replacer = strings.NewReplacer(".", "_")

type Config struct {
	Terminal *Terminal `mapstructure:"terminal" yaml:"terminal"`
	Board    *Board    `mapstructure:"board" yaml:"board"`
	PowerOn  *PowerOn  `mapstructure:"power_on" yaml:"power_on"`
	RomFile  string    `mapstructure:"rom_file" yaml:"rom_file"`
}

type Board struct {
	RomBase int `mapstructure:"rom_base" yaml:"rom_base"`
	Vector  int `mapstructure:"vector" yaml:"vector"`
}

// PowerOn overrides individual registers of the post-power state. Values
// are plain integers so they can come from yaml or environment variables.
type PowerOn struct {
	AF int `mapstructure:"af" yaml:"af"`
	BC int `mapstructure:"bc" yaml:"bc"`
	DE int `mapstructure:"de" yaml:"de"`
	HL int `mapstructure:"hl" yaml:"hl"`
	IX int `mapstructure:"ix" yaml:"ix"`
	IY int `mapstructure:"iy" yaml:"iy"`
	SP int `mapstructure:"sp" yaml:"sp"`
	PC int `mapstructure:"pc" yaml:"pc"`
}

type Terminal struct {
	Width  int `mapstructure:"width" yaml:"width"`
	Height int `mapstructure:"height" yaml:"height"`
}

func DefaultConfig() *Config {
	return &Config{
		Terminal: &Terminal{
			Width:  defTerminalWidth,
			Height: defTerminalHeight,
		},
		Board: &Board{
			RomBase: 0,
			Vector:  0xFF,
		},
		PowerOn: &PowerOn{
			AF: unset, BC: unset, DE: unset, HL: unset,
			IX: unset, IY: unset, SP: unset, PC: unset,
		},
		RomFile: "",
	}
}

// PowerOnState merges the configured overrides over the conventional
// post-power register values.
func (c *Config) PowerOnState() z80.State {
	s := z80.DefaultPowerOn()
	apply := func(target *uint16, v int) {
		if v != unset {
			*target = uint16(v)
		}
	}
	apply(&s.AF, c.PowerOn.AF)
	apply(&s.BC, c.PowerOn.BC)
	apply(&s.DE, c.PowerOn.DE)
	apply(&s.HL, c.PowerOn.HL)
	apply(&s.IX, c.PowerOn.IX)
	apply(&s.IY, c.PowerOn.IY)
	apply(&s.SP, c.PowerOn.SP)
	apply(&s.PC, c.PowerOn.PC)
	return s
}

func NewConfig(cfgFile string) error {
	v := viper.New()

	CLIConfig = DefaultConfig()

	// set default values in viper.
	// Viper needs to know if a key exists in order to override it.
	// https://github.com/spf13/viper/issues/188
	if b, err := yaml.Marshal(DefaultConfig()); err != nil {
		return err
	} else {
		defaultConfig := bytes.NewReader(b)
		if err := v.MergeConfig(defaultConfig); err != nil {
			return err
		}
	}

	if cfgFile != "" {
		if fi, err := os.Stat(cfgFile); err == nil {
			if !fi.IsDir() {
				// overwrite values from config
				v.SetConfigType("yaml")
				v.SetConfigFile(cfgFile)
				if err := v.MergeInConfig(); err != nil {
					log.Warnf("Unexpected error parsing config file [%s]. Error: %v", fi.Name(), err)
				}
			} else {
				log.Warnf("Config file points to a directory, not a file [%s]", cfgFile)
			}
		} else {
			log.Warnf("No config file found [%s], or unable to derive location. Error %v", cfgFile, err)
		}
	}

	// Use environment variables as final override
	v.AutomaticEnv()
	v.SetEnvPrefix(EnvVarPrefix)
	v.SetEnvKeyReplacer(replacer)

	// Preload environment bindings so they are processed on load
	bindVars(v, reflect.TypeOf(*CLIConfig), "")
	return v.Unmarshal(CLIConfig)
}

func bindVars(v *viper.Viper, t reflect.Type, prefix string) {

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("mapstructure")
		if tag != "" {
			tag = prefix + strings.ToUpper(tag)

			if field.Type.Kind() == reflect.Struct {
				bindVars(v, field.Type, tag+".")
			} else if field.Type.Kind() == reflect.Ptr && field.Type.Elem().Kind() == reflect.Struct {
				bindVars(v, field.Type.Elem(), tag+".")
			} else {
				log.Debugf("Scanning for environment variable: %s -> %s", replacer.Replace(tag), tag)
				if err := v.BindEnv(tag); err != nil {
					log.Warnf("Unable to bind to environment variable: %s. Error: %v", tag, err)
				}
			}
		}
	}
}
