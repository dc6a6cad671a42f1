package main

import "strings"

func renderTemplate(id string) string {
	return strings.Replace(cupTemplate, "{{id}}", id, 1)
}

const cupTemplate = `# Cup Configuration
# =================
# This file describes a tournament: when and where matches can be played,
# and which teams play in which division.

id: "{{id}}"
name: Summer Cup

# Per-team daily match cap used by every division that does not set its own.
# Exceeding it is heavily penalized but not forbidden. 0 or omitted = no cap.
max_matches_per_team_per_day: 3

# Days of play, in order. Times use 24-hour format. Matches never overlap a
# break.
days:
  - id: sat
    date: "2026-06-13"
    start: "09:00"
    end: "17:00"
    breaks:
      - start: "12:00"
        end: "13:00"
  - id: sun
    date: "2026-06-14"
    start: "09:00"
    end: "17:00"
    breaks:
      - start: "12:00"
        end: "13:00"

# Pitches and the largest format each can host (3v3, 5v5, 7v7, 9v9, 11v11).
# A pitch can host any smaller format. A pitch with sub_pitches is only used
# through its sub-pitches, each of which acts as its own pitch.
pitches:
  - id: main
    name: Main Pitch
    format: 11v11
  - id: east
    name: East
    format: 7v7
  - id: side
    name: Side
    format: 7v7
    sub_pitches:
      - format: 5v5
      - format: 5v5

# Divisions (classes). Every team plays every other team of its division
# once, or of its pool when pooling is on. Team ids must be unique across
# the whole cup.
#
#   match_minutes:    length of one match
#   buffer_minutes:   changeover time between back-to-back matches on a pitch
#   min_rest_minutes: minimum time between two matches of the same team
#   allowed_days:     optional list of day indexes (0 = first day)
#   pooling:          split the teams into pools of 3-6 (assigned on generate
#                     unless pools are listed)
divisions:
  - id: u9
    name: Under 9
    label: U9
    format: 5v5
    match_minutes: 20
    buffer_minutes: 5
    min_rest_minutes: 20
    teams:
      - {id: u9-lions, name: Lions, club: North FC}
      - {id: u9-tigers, name: Tigers, club: South FC}
      - {id: u9-bears, name: Bears, club: East United}
      - {id: u9-wolves, name: Wolves, club: West Rovers}
      - {id: u9-eagles, name: Eagles, club: North FC}
      - {id: u9-sharks, name: Sharks, club: South FC}
  - id: u11
    name: Under 11
    label: U11
    format: 7v7
    match_minutes: 25
    buffer_minutes: 5
    min_rest_minutes: 30
    pooling: true
    teams:
      - {id: u11-north-1, name: North FC 1, club: North FC}
      - {id: u11-north-2, name: North FC 2, club: North FC}
      - {id: u11-south-1, name: South FC 1, club: South FC}
      - {id: u11-south-2, name: South FC 2, club: South FC}
      - {id: u11-east, name: East United, club: East United}
      - {id: u11-west, name: West Rovers, club: West Rovers}
      - {id: u11-city, name: City Academy}
      - {id: u11-town, name: Town Juniors}
  - id: u13
    name: Under 13
    label: U13
    format: 9v9
    match_minutes: 30
    buffer_minutes: 10
    min_rest_minutes: 45
    max_matches_per_team_per_day: 2
    teams:
      - {id: u13-north, name: North FC, club: North FC}
      - {id: u13-south, name: South FC, club: South FC}
      - {id: u13-east, name: East United, club: East United}
      - {id: u13-west, name: West Rovers, club: West Rovers}
      - {id: u13-city, name: City Academy}
`
