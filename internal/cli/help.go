package cli

import (
	"io"
)

const helpText = `Cookbook Club CLI

Usage:
  cookbookclub [--data <path>] [--storage <json|sqlite>] <command> [subcommand] [options]

Commands:
  club init --name <clubName> --host-name <name> [--host-email <email>] [--host-phone <phone>]
  club show
  club set-policy --actor <userId> --policy <open|closed>
  club set-reminders --actor <userId> [--windows <hoursCsv>] [--recipe-prompt-hours <hours>]
  club reminder-templates
  club set-reminder-template --actor <userId> --template <standard|light|tight|same_day|custom>
  club add-reminder-template --actor <userId> --name <templateName> --windows <hoursCsv> [--recipe-prompt-hours <hours>]
  club remove-reminder-template --actor <userId> --name <templateName>
  club export-reminder-templates --out <path>
  club import-reminder-templates --actor <userId> --in <path> [--overwrite] [--prefix <name>]
  user add --name <name> [--email <email>] [--phone <phone>]
  user list
  member invite --actor <userId> --user <userId> [--role <member|admin|co_admin>]
  member list
  member set-role --actor <userId> --user <userId> --role <member|admin|co_admin>
  host show
  host set --actor <userId> --user <userId>
  meetup show [--id <meetupId>]
  meetup list
  meetup schedule --actor <userId> --at <ISO datetime>
  meetup set-theme --actor <userId> --theme <text>
  meetup advance --actor <userId>
  recipe add --actor <userId> --title <title> --content <text> --image <path>
  recipe list --actor <userId> [--meetup <meetupId>]
  recipe favorite --actor <userId> --recipe <recipeId>
  cookbook personal-add --actor <userId> --recipe <recipeId> --collection <name>
  cookbook personal-list --actor <userId>
  access grant-past --actor <userId> --user <userId> [--from-meetup <meetupId> | --all]
  data export --out <path>
  data import --in <path>
  data verify [--in <path>]
  data info
  data doctor [--repair]
  notify list [--now <ISO datetime>] [--user <userId>]
  notify run [--now <ISO datetime>]
  version
  help

Environment:
  COOKBOOK_STORAGE, COOKBOOK_DATA_PATH and COOKBOOK_SQLITE_BUSY_TIMEOUT set the
  defaults for --storage and --data. A .env file in the working directory is
  loaded first.
`

func printHelp(w io.Writer) {
	_, _ = io.WriteString(w, helpText)
}
