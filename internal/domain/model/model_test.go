package model_test

import (
	"encoding/json"
	"testing"

	"github.com/pattarpon/pokescan/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestIVs_Sum(t *testing.T) {
	convey.Convey("Given IV sextuples", t, func() {
		convey.Convey("When all values are maxed", func() {
			iv := model.IVs{HP: 31, Atk: 31, Def: 31, SpA: 31, SpD: 31, Spe: 31}
			convey.So(iv.Sum(), convey.ShouldEqual, 186)
		})

		convey.Convey("When all values are zero", func() {
			convey.So(model.IVs{}.Sum(), convey.ShouldEqual, 0)
		})

		convey.Convey("When values are mixed", func() {
			iv := model.IVs{HP: 10, Atk: 0, Def: 5, SpA: 31, SpD: 1, Spe: 3}
			convey.So(iv.Sum(), convey.ShouldEqual, 50)
		})
	})
}

func TestRawPayload_Decode(t *testing.T) {
	convey.Convey("Given wire-format JSON lines", t, func() {
		convey.Convey("When decoding a full snapshot", func() {
			line := `{"game":"emerald_us_eu","species_id":25,"level":10,"nature":"Jolly",` +
				`"ability_slot":1,"gender":"F","ivs":{"hp":31,"atk":30,"def":29,"spa":28,"spd":27,"spe":26},` +
				`"hp_type":"Electric","hp_power":70,"shiny":true,"shiny_type":"star"}`

			var p model.RawPayload
			err := json.Unmarshal([]byte(line), &p)

			convey.So(err, convey.ShouldBeNil)
			convey.So(p.SpeciesID, convey.ShouldNotBeNil)
			convey.So(*p.SpeciesID, convey.ShouldEqual, 25)
			convey.So(*p.Level, convey.ShouldEqual, 10)
			convey.So(*p.Nature, convey.ShouldEqual, "Jolly")
			convey.So(*p.AbilitySlot, convey.ShouldEqual, 1)
			convey.So(p.IVs.Sum(), convey.ShouldEqual, 171)
			convey.So(*p.Shiny, convey.ShouldBeTrue)
			convey.So(p.IsClear(), convey.ShouldBeFalse)
		})

		convey.Convey("When decoding the clear sentinel", func() {
			var p model.RawPayload
			err := json.Unmarshal([]byte(`{"clear":true}`), &p)

			convey.So(err, convey.ShouldBeNil)
			convey.So(p.IsClear(), convey.ShouldBeTrue)
			convey.So(p.SpeciesID, convey.ShouldBeNil)
		})

		convey.Convey("When decoding an empty object", func() {
			var p model.RawPayload
			err := json.Unmarshal([]byte(`{}`), &p)

			convey.So(err, convey.ShouldBeNil)
			convey.So(p.IsClear(), convey.ShouldBeFalse)
			convey.So(p.IVs, convey.ShouldBeNil)
		})
	})
}

func TestRecord_Label(t *testing.T) {
	convey.Convey("Given canonical records", t, func() {
		convey.Convey("When the level is known", func() {
			lvl := 10
			r := model.Record{SpeciesName: "Pikachu", Level: &lvl}
			convey.So(r.Label(), convey.ShouldEqual, "Pikachu Lv.10")
		})

		convey.Convey("When the level is unknown", func() {
			r := model.Record{SpeciesName: "Zigzagoon"}
			convey.So(r.Label(), convey.ShouldEqual, "Zigzagoon Lv.?")
		})
	})
}
