package unitdata

// displayNamesZH maps type codes to the localized entity names the game
// server returns when language="zh". The RPC layer translates both ways;
// nothing outside gameapi should ever see a localized name.
var displayNamesZH = map[string]string{
	"powr": "发电厂",
	"apwr": "核电站",
	"proc": "矿场",
	"silo": "储存罐",
	"barr": "兵营",
	"tent": "兵营",
	"weap": "战车工厂",
	"fact": "建造厂",
	"fix":  "维修厂",
	"syrd": "船坞",
	"spen": "潜艇基地",
	"afld": "空军基地",
	"hpad": "直升机坪",
	"dome": "雷达站",
	"atek": "盟军科技中心",
	"stek": "科技中心",
	"kenn": "军犬窝",
	"bio":  "生物实验室",
	"gap":  "裂缝产生器",
	"pdox": "超时空传送仪",
	"tsla": "特斯拉塔",
	"iron": "铁幕装置",
	"mslo": "核弹发射井",
	"pbox": "碉堡",
	"hbox": "伪装碉堡",
	"gun":  "炮塔",
	"ftur": "火焰塔",
	"sam":  "防空导弹",
	"agun": "防空炮",

	"e1":    "步兵",
	"e2":    "掷弹兵",
	"e3":    "火箭兵",
	"e4":    "喷火兵",
	"e6":    "工程师",
	"e7":    "谭雅",
	"dog":   "军犬",
	"medic": "医疗兵",
	"mech":  "机械师",
	"spy":   "间谍",
	"thief": "小偷",
	"shok":  "磁暴步兵",

	"harv": "采矿车",
	"mcv":  "基地车",
	"jeep": "吉普车",
	"apc":  "装甲运输车",
	"arty": "榴弹炮",
	"v2rl": "V2火箭发射车",
	"1tnk": "轻坦克",
	"2tnk": "中型坦克",
	"3tnk": "重型坦克",
	"ctnk": "超时空坦克",
	"4tnk": "超重型坦克",
	"mgg":  "移动裂缝产生器",
	"mrj":  "雷达干扰车",
	"dtrk": "自爆卡车",
	"ttnk": "特斯拉坦克",
	"ftrk": "防空车",
	"mnly": "地雷部署车",
	"qtnk": "震荡坦克",

	"yak":  "雅克战机",
	"mig":  "米格战机",
	"hind": "雌鹿直升机",
	"heli": "长弓武装直升机",
	"badr": "贝德獾轰炸机",
	"u2":   "侦察机",
	"mh60": "黑鹰直升机",
	"tran": "运输直升机",

	"ss":   "潜艇",
	"msub": "导弹潜艇",
	"dd":   "驱逐舰",
	"ca":   "巡洋舰",
	"lst":  "运输艇",
	"pt":   "炮艇",

	"mine":  "矿石",
	"gmine": "宝石矿",
	"oilb":  "油井",
	"crate": "补给箱",
}

// DisplayNamesZH returns the full code → localized-name table for zh.
// The returned map must be treated as read-only.
func DisplayNamesZH() map[string]string {
	return displayNamesZH
}
