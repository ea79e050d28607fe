// Copyright (c) 2025 AccelByte Inc. All Rights Reserved.
// This is licensed software from AccelByte Inc, for limitations
// and restrictions contact your company contract manager.

package server

import (
	"strings"

	"github.com/AccelByte/extend-core-ranked/pkg/gateway"
)

var legalStages = []string{
	"Battlefield",
	"Final Destination",
	"Small Battlefield",
	"Pokémon Stadium 2",
	"Smashville",
	"Hollow Bastion",
	"Town and City",
	"Lylat Cruise",
	"Kalos Pokémon League",
}

func bullets(lines ...string) string {
	return "- " + strings.Join(lines, "\n- ")
}

func rulesEmbed() *gateway.Embed {
	embed := &gateway.Embed{Title: "Smash Ultimate Ruleset", Color: gateway.ColorBlue}
	embed.AddField("Stocks and Time", "3 stocks\n7 minutes", false).
		AddField("Rules", "Items: Off\nHazards: Off\nSpirits: Off", false).
		AddField("Legal Stages", bullets(legalStages...), false).
		AddField("Stage Selection", "No Counterpicks, No DSR\n\n**Stage Banning:**\n"+bullets(
			"Higher seed bans 3 stages.",
			"The other player bans 4 stages.",
			"Higher seed chooses between the remaining 2 stages.",
		), false).
		AddField("Subsequent Games", bullets(
			"Winner of the previous game bans 3 stages.",
			"Loser picks from the remaining stages.",
		), false).
		AddField("Character Selection", bullets(
			"For Game 1, declare your character before stage banning.",
			"Blind picks are allowed if both players agree.",
			"After Game 1, the loser can ask the winner if they are switching characters **after** stage selection.",
			"The winner must declare if they are switching and to whom.",
			"The loser can then choose any character.",
		), false)
	return embed
}
