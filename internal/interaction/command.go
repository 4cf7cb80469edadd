package interaction

// CommandName はスラッシュコマンド名。
type CommandName string

const (
	CommandScrim      CommandName = "scrim"
	CommandScrimList  CommandName = "scrimlist"
	CommandScrimClear CommandName = "scrimclear"
	CommandAlert      CommandName = "alert"
	CommandProfile    CommandName = "profile"
	CommandEditMaps   CommandName = "editmaps"
	CommandSetup      CommandName = "setup"
)

// Commands は登録対象のすべてのコマンド。
var Commands = []CommandName{
	CommandScrim, CommandScrimList, CommandScrimClear, CommandAlert,
	CommandProfile, CommandEditMaps, CommandSetup,
}

// Known は定義済みのコマンドかどうかを返す。
func (c CommandName) Known() bool {
	for _, k := range Commands {
		if k == c {
			return true
		}
	}
	return false
}

// サブコマンド名とオプション名
const (
	SubAlertOn      = "on"
	SubAlertOff     = "off"
	SubAlertStatus  = "status"
	SubProfileView  = "view"
	SubProfileEdit  = "edit"
	SubMapsAdd      = "add"
	SubMapsRemove   = "remove"
	SubMapsList     = "list"
	SubSetupChannel = "channel"
	SubSetupInfo    = "info"

	OptionMapName = "mapname"
	OptionChannel = "channel"
)

// モーダルの入力フィールドID
const (
	FieldTeamName        = "team_name"
	FieldDivision        = "division"
	FieldScrimDate       = "scrim_date"
	FieldScrimTime       = "scrim_time"
	FieldProfileTeamName = "profile_team_name"
	FieldProfileDivision = "profile_division"
)
